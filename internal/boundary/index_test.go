package boundary

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotoflow/revgeo/internal/geometry"
)

// ---------------------------------------------------------------------------
// GetCountry
// ---------------------------------------------------------------------------

func TestGetCountrySingleMatchCachesCell(t *testing.T) {
	ix := testIndex(t)

	// Bratislava: fresh polygon test, then a cache hit for the same cell.
	res := ix.GetCountry(48.1486, 17.1077)
	assert.Equal(t, "SK", res.Code)
	assert.False(t, res.Border)
	assert.False(t, res.Ocean)

	before := ix.CacheStats()
	res = ix.GetCountry(48.1486, 17.1077)
	assert.Equal(t, "SK", res.Code)
	after := ix.CacheStats()
	assert.Equal(t, before.Hits+1, after.Hits, "second lookup must hit the cell cache")
}

func TestGetCountryOceanDoesNotPoisonCache(t *testing.T) {
	ix := testIndex(t)

	res := ix.GetCountry(0, -30) // mid-Atlantic
	assert.True(t, res.Ocean)
	assert.Empty(t, res.Code)

	stats := ix.CacheStats()
	assert.Zero(t, stats.CountryCells, "ocean results are not cached")
	assert.Zero(t, stats.BorderCells)
}

func TestGetCountryBorderCellReturnsCandidates(t *testing.T) {
	ix := testIndex(t)

	// South of 48°N the Slovak and Austrian test boxes overlap.
	res := ix.GetCountry(47.9, 17.0)
	assert.True(t, res.Border)
	assert.Empty(t, res.Code, "border cells never commit to a winner")
	assert.Equal(t, []string{"AT", "SK"}, res.Candidates)

	stats := ix.CacheStats()
	assert.Equal(t, 1, stats.BorderCells)

	// Once marked, the cell stays border and keeps reporting candidates.
	res = ix.GetCountry(47.9, 17.0)
	assert.True(t, res.Border)
	assert.Equal(t, []string{"AT", "SK"}, res.Candidates)
}

func TestGetCountryVaticanHole(t *testing.T) {
	ix := testIndex(t)

	res := ix.GetCountry(41.905, 12.455)
	assert.True(t, res.Ocean, "inside the enclave hole no country matches")

	res = ix.GetCountry(42.0, 12.5)
	assert.Equal(t, "IT", res.Code)
}

func TestGetCountryNonFiniteInput(t *testing.T) {
	ix := testIndex(t)

	for _, c := range []struct{ lat, lon float64 }{
		{math.NaN(), 17},
		{48, math.NaN()},
		{math.Inf(1), 17},
		{48, math.Inf(-1)},
	} {
		res := ix.GetCountry(c.lat, c.lon)
		assert.Empty(t, res.Code)
		assert.False(t, res.Border)
	}
	assert.Zero(t, ix.CacheStats().CountryCells, "junk input must not populate the cache")
}

func TestGetCountryUninitialized(t *testing.T) {
	ix := NewIndex(0)
	res := ix.GetCountry(48.1486, 17.1077)
	assert.Equal(t, CountryLookupResult{}, res)
	assert.False(t, ix.Initialized())
}

// ---------------------------------------------------------------------------
// IsPointInCountry / GetCandidateCountries
// ---------------------------------------------------------------------------

func TestIndexIsPointInCountry(t *testing.T) {
	ix := testIndex(t)

	assert.True(t, ix.IsPointInCountry(48.1486, 17.1077, "SK"))
	assert.False(t, ix.IsPointInCountry(48.1486, 17.1077, "AT"))
	assert.False(t, ix.IsPointInCountry(48.1486, 17.1077, "XX"))
}

func TestGetCandidateCountriesBypassesCache(t *testing.T) {
	ix := testIndex(t)

	assert.Equal(t, []string{"AT", "SK"}, ix.GetCandidateCountries(47.9, 17.0))
	assert.Equal(t, []string{"SK"}, ix.GetCandidateCountries(48.1486, 17.1077))
	assert.Empty(t, ix.GetCandidateCountries(0, -30))
	assert.Zero(t, ix.CacheStats().BorderCells, "candidate queries leave the cache untouched")
}

// ---------------------------------------------------------------------------
// Initialization
// ---------------------------------------------------------------------------

func TestInitializeMissingFileLeavesUninitialized(t *testing.T) {
	ix := NewIndex(0)
	err := ix.Initialize(context.Background(), filepath.Join(t.TempDir(), "nope.geobounds"))
	require.NoError(t, err)
	assert.False(t, ix.Initialized())
}

func TestInitializeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.geobounds")
	require.NoError(t, WriteFile(path, []*geometry.CountryBoundary{slovakia(t)}, nil, nil))

	ix := NewIndex(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ix.Initialize(context.Background(), path))
		}()
	}
	wg.Wait()

	assert.True(t, ix.Initialized())
	assert.Len(t, ix.Countries(), 1)
}

func TestInitializeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ix := NewIndex(0)
	err := ix.Initialize(ctx, "whatever.geobounds")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ix.Initialized())
}

// ---------------------------------------------------------------------------
// SaveTo round trip through a live index
// ---------------------------------------------------------------------------

func TestSaveToPreservesCaches(t *testing.T) {
	ix := testIndex(t)
	ix.GetCountry(48.1486, 17.1077) // populate single-country cache
	ix.GetCountry(47.9, 17.0)       // populate border map

	path := filepath.Join(t.TempDir(), "warm.geobounds")
	require.NoError(t, ix.SaveTo(path))

	reloaded := NewIndex(0)
	require.NoError(t, reloaded.Initialize(context.Background(), path))
	require.True(t, reloaded.Initialized())

	stats := reloaded.CacheStats()
	assert.Equal(t, 1, stats.CountryCells)
	assert.Equal(t, 1, stats.BorderCells)

	res := reloaded.GetCountry(47.9, 17.0)
	assert.True(t, res.Border)
	assert.Equal(t, []string{"AT", "SK"}, res.Candidates)
}
