package boundary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fotoflow/revgeo/internal/geometry"
)

// Shared fixtures: simplified Slovakia and Austria. Austria's polygon steps
// back to 16.9°E north of 48°N, so Bratislava (48.1486, 17.1077) is Slovak
// only and Vienna (48.2082, 16.3738) Austrian only, while the strip south of
// 48°N between 16.8°E and 17.2°E genuinely belongs to both boxes and gives
// the border-cell logic real ambiguity to chew on.

func rectPolygon(minLat, minLon, maxLat, maxLon float64) geometry.Polygon {
	return geometry.Polygon{Exterior: geometry.PolygonRing{Points: []geometry.GeoPoint{
		{Lat: minLat, Lon: minLon},
		{Lat: maxLat, Lon: minLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: minLat, Lon: minLon},
	}}}
}

func slovakia(t *testing.T) *geometry.CountryBoundary {
	t.Helper()
	sk, err := geometry.NewCountryBoundary("SK", "Slovakia", "SVK", []geometry.Polygon{
		rectPolygon(47.7, 16.8, 49.6, 22.6),
	})
	require.NoError(t, err)
	return sk
}

func austria(t *testing.T) *geometry.CountryBoundary {
	t.Helper()
	ring := geometry.PolygonRing{Points: []geometry.GeoPoint{
		{Lat: 46.4, Lon: 9.5},
		{Lat: 49.0, Lon: 9.5},
		{Lat: 49.0, Lon: 16.9},
		{Lat: 48.0, Lon: 16.9},
		{Lat: 48.0, Lon: 17.2},
		{Lat: 46.4, Lon: 17.2},
		{Lat: 46.4, Lon: 9.5},
	}}
	at, err := geometry.NewCountryBoundary("AT", "Austria", "AUT", []geometry.Polygon{{Exterior: ring}})
	require.NoError(t, err)
	return at
}

func italyWithVatican(t *testing.T) *geometry.CountryBoundary {
	t.Helper()
	poly := rectPolygon(36.6, 6.7, 47.1, 18.5)
	hole := rectPolygon(41.90, 12.445, 41.91, 12.460).Exterior
	hole.Hole = true
	poly.Holes = []geometry.PolygonRing{hole}
	it, err := geometry.NewCountryBoundary("IT", "Italy", "ITA", []geometry.Polygon{poly})
	require.NoError(t, err)
	return it
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex(DefaultCachePrecision)
	ix.LoadBoundaries([]*geometry.CountryBoundary{slovakia(t), austria(t), italyWithVatican(t)})
	return ix
}
