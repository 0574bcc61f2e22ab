package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPointOnEdge(t *testing.T) {
	ring := rectRing(0, 0, 10, 10, false)

	tests := []struct {
		name     string
		lat, lon float64
		eps      float64
		want     bool
	}{
		{"on vertex", 0, 0, 0.01, true},
		{"on edge", 5, 0, 0.01, true},
		{"near edge within epsilon", 5, 0.005, 0.01, true},
		{"near edge beyond epsilon", 5, 0.5, 0.01, false},
		{"interior", 5, 5, 0.01, false},
		{"zero epsilon never matches", 0, 0, 0, false},
		{"negative epsilon never matches", 0, 0, -1, false},
		{"nan point", math.NaN(), 0, 0.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPointOnEdge(tt.lat, tt.lon, ring, tt.eps))
		})
	}
}

func TestIsPointOnEdgeDegenerateRings(t *testing.T) {
	assert.False(t, IsPointOnEdge(0, 0, PolygonRing{}, 0.1))

	// A single-point "ring" still matches within epsilon of that point.
	dot := PolygonRing{Points: []GeoPoint{{Lat: 1, Lon: 1}}}
	assert.True(t, IsPointOnEdge(1.0005, 1, dot, 0.01))
	assert.False(t, IsPointOnEdge(2, 2, dot, 0.01))

	// Zero-length segment (duplicate endpoints) must not divide by zero.
	seg := PolygonRing{Points: []GeoPoint{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}}}
	assert.True(t, IsPointOnEdge(1, 1.0005, seg, 0.01))
}
