package geocoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotoflow/revgeo/internal/boundary"
	"github.com/fotoflow/revgeo/internal/gazetteer"
	"github.com/fotoflow/revgeo/internal/geometry"
)

func slovakia(t *testing.T) *geometry.CountryBoundary {
	t.Helper()
	sk, err := geometry.NewCountryBoundary("SK", "Slovakia", "SVK", []geometry.Polygon{
		{Exterior: geometry.PolygonRing{Points: []geometry.GeoPoint{
			{Lat: 47.7, Lon: 16.8},
			{Lat: 49.6, Lon: 16.8},
			{Lat: 49.6, Lon: 22.6},
			{Lat: 47.7, Lon: 22.6},
			{Lat: 47.7, Lon: 16.8},
		}}},
	})
	require.NoError(t, err)
	return sk
}

// Austria's eastern edge steps back west of Bratislava north of 48N, so
// Bratislava is Slovak-only while the strip south of 48N stays ambiguous
// with the Slovak rectangle.
func austria(t *testing.T) *geometry.CountryBoundary {
	t.Helper()
	at, err := geometry.NewCountryBoundary("AT", "Austria", "AUT", []geometry.Polygon{
		{Exterior: geometry.PolygonRing{Points: []geometry.GeoPoint{
			{Lat: 46.4, Lon: 9.5},
			{Lat: 49.0, Lon: 9.5},
			{Lat: 49.0, Lon: 16.9},
			{Lat: 48.0, Lon: 16.9},
			{Lat: 48.0, Lon: 17.2},
			{Lat: 46.4, Lon: 17.2},
			{Lat: 46.4, Lon: 9.5},
		}}},
	})
	require.NoError(t, err)
	return at
}

func testGeocoderPlaces() []gazetteer.Place {
	return []gazetteer.Place{
		{ID: 1, Name: "Bratislava", Lat: 48.14816, Lon: 17.10674, Class: gazetteer.ClassPopulated, CountryCode: "SK", Admin1: "02", Admin2: "101", Admin3: "529", Population: 423737},
		{ID: 2, Name: "Wien", Lat: 48.20849, Lon: 16.37208, Class: gazetteer.ClassPopulated, CountryCode: "AT", Admin1: "09", Population: 1691468},
		{ID: 3, Name: "Hainburg an der Donau", Lat: 48.14639, Lon: 16.94500, Class: gazetteer.ClassPopulated, CountryCode: "AT", Admin1: "03", Population: 6633},
		{ID: 4, Name: "New York City", Lat: 40.71427, Lon: -74.00597, Class: gazetteer.ClassPopulated, CountryCode: "US", Admin1: "NY", Population: 8804190},
	}
}

func testGeocoder(t *testing.T, filter bool) *Geocoder {
	t.Helper()
	g := New(Options{UseBoundaryFilter: filter})
	g.Index().LoadBoundaries([]*geometry.CountryBoundary{slovakia(t), austria(t)})
	g.Places().SetPlaces(testGeocoderPlaces())
	return g
}

// ---------------------------------------------------------------------------
// ReverseGeocode
// ---------------------------------------------------------------------------

// A point on the Slovak side of the border is closer to Hainburg (Austria)
// than to Bratislava. The boundary filter is what keeps the answer Slovak.
func TestReverseGeocodeBoundaryFiltered(t *testing.T) {
	lat, lon := 48.146, 17.02

	loc := testGeocoder(t, true).ReverseGeocode(lat, lon)
	require.NotNil(t, loc)
	assert.Equal(t, "Bratislava", loc.City)
	assert.Equal(t, "SK", loc.Country)

	loc = testGeocoder(t, false).ReverseGeocode(lat, lon)
	require.NotNil(t, loc)
	assert.Equal(t, "Hainburg an der Donau", loc.City)
	assert.Equal(t, "AT", loc.Country)
}

func TestReverseGeocodeOceanFallsBack(t *testing.T) {
	g := testGeocoder(t, true)

	loc := g.ReverseGeocode(30, -40)
	require.NotNil(t, loc)
	assert.Equal(t, "New York City", loc.City)
}

// A multi-candidate border cell never commits, so the lookup falls back to
// the plain nearest-place search.
func TestReverseGeocodeBorderCellFallsBack(t *testing.T) {
	g := testGeocoder(t, true)
	lat, lon := 47.9, 17.0

	res := g.Index().GetCountry(lat, lon)
	assert.True(t, res.Border)
	assert.Len(t, res.Candidates, 2)

	loc := g.ReverseGeocode(lat, lon)
	require.NotNil(t, loc)
	assert.Equal(t, "Bratislava", loc.City)
}

func TestReverseGeocodeNoPlaceInResolvedCountry(t *testing.T) {
	g := New(Options{UseBoundaryFilter: true})
	g.Index().LoadBoundaries([]*geometry.CountryBoundary{slovakia(t)})
	g.Places().SetPlaces([]gazetteer.Place{
		{ID: 2, Name: "Wien", Lat: 48.20849, Lon: 16.37208, Class: gazetteer.ClassPopulated, CountryCode: "AT", Population: 1691468},
	})

	// Inside Slovakia but no Slovak places loaded: unfiltered fallback.
	loc := g.ReverseGeocode(48.7, 19.5)
	require.NotNil(t, loc)
	assert.Equal(t, "Wien", loc.City)
}

func TestReverseGeocodeDegenerateCoordinates(t *testing.T) {
	g := testGeocoder(t, true)

	for _, c := range [][2]float64{
		{90, 0}, {-90, 0}, {0, 180}, {0, -180}, {0, 0},
	} {
		loc := g.ReverseGeocode(c[0], c[1])
		require.NotNil(t, loc, "lat=%v lon=%v", c[0], c[1])
	}
}

func TestReverseGeocodeNothingLoaded(t *testing.T) {
	g := New(Options{UseBoundaryFilter: true})
	assert.Nil(t, g.ReverseGeocode(48.15, 17.10))
}

// ---------------------------------------------------------------------------
// InitializeAsync
// ---------------------------------------------------------------------------

func TestInitializeAsyncFromFiles(t *testing.T) {
	dir := t.TempDir()
	boundsPath := filepath.Join(dir, "test.geobounds")
	// "u2s1v" is the precision-5 cell containing Bratislava; persisting it
	// as a border cell forces the full polygon test on the first lookup.
	require.NoError(t, boundary.WriteFile(boundsPath,
		[]*geometry.CountryBoundary{slovakia(t), austria(t)},
		nil,
		map[string][]string{"u2s1v": {"AT", "SK"}},
	))

	gazPath := filepath.Join(dir, "places.txt")
	tsv := "3060972\tBratislava\tBratislava\t\t48.14816\t17.10674\tP\t\tSK\t\t02\t101\t529\t\t423737\t\t\tEurope/Bratislava\t2024-01-01\n"
	require.NoError(t, os.WriteFile(gazPath, []byte(tsv), 0o644))

	g := New(Options{
		BoundaryPath:      boundsPath,
		GazetteerPath:     gazPath,
		UseBoundaryFilter: true,
	})
	require.NoError(t, g.InitializeAsync(context.Background()))
	assert.True(t, g.Index().Initialized())
	assert.True(t, g.Places().IsInitialized())

	// Country names from the boundary set resolve name-based filters.
	p := g.Places().FindNearest(48.15, 17.10, gazetteer.FindOptions{CountryFilter: "Slovakia"})
	require.NotNil(t, p)
	assert.Equal(t, "SK", p.CountryCode)

	// The border cell collapses to a single candidate at this exact point,
	// which counts as resolved.
	res := g.Index().GetCountry(48.14816, 17.10674)
	assert.True(t, res.Border)
	assert.Equal(t, []string{"SK"}, res.Candidates)

	loc := g.ReverseGeocode(48.14816, 17.10674)
	require.NotNil(t, loc)
	assert.Equal(t, "Bratislava", loc.City)
}

func TestInitializeAsyncMissingFilesStillUsable(t *testing.T) {
	dir := t.TempDir()
	g := New(Options{
		BoundaryPath:      filepath.Join(dir, "nope.geobounds"),
		GazetteerPath:     filepath.Join(dir, "nope.txt"),
		UseBoundaryFilter: true,
	})
	require.NoError(t, g.InitializeAsync(context.Background()))
	assert.False(t, g.Index().Initialized())
	assert.False(t, g.Places().IsInitialized())
	assert.Nil(t, g.ReverseGeocode(48.15, 17.10))

	// A later manual load turns it into a plain nearest-place engine.
	g.Places().SetPlaces(testGeocoderPlaces())
	loc := g.ReverseGeocode(48.15, 17.10)
	require.NotNil(t, loc)
	assert.Equal(t, "Bratislava", loc.City)
}

func TestInitializeAsyncCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := New(Options{BoundaryPath: "x.geobounds", GazetteerPath: "x.txt"})
	err := g.InitializeAsync(ctx)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func TestGeocoderStats(t *testing.T) {
	g := testGeocoder(t, true)

	g.ReverseGeocode(48.146, 17.02)
	g.ReverseGeocode(30, -40)

	stats := g.Stats()
	assert.Equal(t, int64(2), stats.Boundary.Lookups)
	assert.GreaterOrEqual(t, stats.Places.Lookups, int64(2))
}
