package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBBoxContains(t *testing.T) {
	box := BoundingBox{MinLat: -10, MinLon: -20, MaxLat: 10, MaxLon: 20}

	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"center", 0, 0, true},
		{"min corner", -10, -20, true},
		{"max corner", 10, 20, true},
		{"edge", 10, 0, true},
		{"north of box", 11, 0, false},
		{"west of box", 0, -21, false},
		{"nan lat", math.NaN(), 0, false},
		{"nan lon", 0, math.NaN(), false},
		{"positive inf", math.Inf(1), 0, false},
		{"negative inf", 0, math.Inf(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.lat, tt.lon))
		})
	}
}

func TestBBoxIntersects(t *testing.T) {
	a := BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 10}

	assert.True(t, a.Intersects(BoundingBox{MinLat: 5, MinLon: 5, MaxLat: 15, MaxLon: 15}), "overlap")
	assert.True(t, a.Intersects(BoundingBox{MinLat: 10, MinLon: 0, MaxLat: 20, MaxLon: 10}), "touching edge")
	assert.True(t, a.Intersects(BoundingBox{MinLat: 10, MinLon: 10, MaxLat: 20, MaxLon: 20}), "touching corner")
	assert.False(t, a.Intersects(BoundingBox{MinLat: 11, MinLon: 11, MaxLat: 20, MaxLon: 20}), "disjoint")
	assert.False(t, a.Intersects(EmptyBox()), "empty")
	assert.False(t, EmptyBox().Intersects(a), "empty receiver")
}

func TestBBoxFromPoints(t *testing.T) {
	assert.True(t, BBoxFromPoints(nil).Empty())

	single := BBoxFromPoints([]GeoPoint{{Lat: 5, Lon: 6}})
	assert.False(t, single.Empty())
	assert.True(t, single.Contains(5, 6))
	assert.False(t, single.Contains(5, 6.001))

	withJunk := BBoxFromPoints([]GeoPoint{{Lat: 1, Lon: 1}, {Lat: math.NaN(), Lon: 2}, {Lat: 3, Lon: 3}})
	assert.Equal(t, BoundingBox{MinLat: 1, MinLon: 1, MaxLat: 3, MaxLon: 3}, withJunk)
}

func TestBBoxUnion(t *testing.T) {
	a := BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 1}
	b := BoundingBox{MinLat: -5, MinLon: 2, MaxLat: 0, MaxLon: 3}

	u := a.Union(b)
	assert.Equal(t, BoundingBox{MinLat: -5, MinLon: 0, MaxLat: 1, MaxLon: 3}, u)

	assert.Equal(t, a, a.Union(EmptyBox()))
	assert.Equal(t, a, EmptyBox().Union(a))
}
