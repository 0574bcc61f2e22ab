// Package boundary resolves coordinates to countries through simplified
// polygon data, fronted by a geohash cell cache with border-cell
// disambiguation, and persists the whole structure in a compact binary file.
package boundary

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fotoflow/revgeo/internal/geohash"
	"github.com/fotoflow/revgeo/internal/geometry"
)

// DefaultCachePrecision is the geohash length used for cache keys. Five
// characters give cells of roughly ±2.4 km, small enough that all-one-country
// cells dominate and border cells stay rare.
const DefaultCachePrecision = 5

// CountryLookupResult is the outcome of resolving a coordinate.
type CountryLookupResult struct {
	// Code is the resolved ISO 3166-1 alpha-2 code, empty when no single
	// country was resolved.
	Code string
	// Ocean is set when no country's polygons contain the point.
	Ocean bool
	// Border is set when the point's cache cell straddles several
	// countries; Candidates then carries every country matching the point.
	Border bool
	// Candidates lists candidate codes for border results, uncommitted.
	Candidates []string
}

// Index is the country-resolution service: loaded boundaries plus the
// geohash cell cache. All lookup methods are safe for unbounded concurrent
// use; initialization happens once and the boundary set is read-only
// afterwards.
type Index struct {
	precision int
	cells     *CellCache

	mu         sync.RWMutex
	boundaries []*geometry.CountryBoundary
	ready      bool

	initMu      sync.Mutex
	initStarted bool
}

// NewIndex creates an uninitialized index. A precision outside [1, 12]
// falls back to DefaultCachePrecision.
func NewIndex(precision int) *Index {
	if precision < 1 || precision > geohash.MaxPrecision {
		precision = DefaultCachePrecision
	}
	return &Index{
		precision: precision,
		cells:     NewCellCache(),
	}
}

// Initialize loads boundaries and caches from a boundary file. It is
// idempotent: only the first call reads the file, later calls (including
// concurrent ones) return immediately without touching it. A missing or
// malformed file leaves the index in the well-defined "not initialized"
// state and is not an error — callers fall back to non-boundary geocoding.
// Only context cancellation is surfaced.
func (ix *Index) Initialize(ctx context.Context, path string) error {
	ix.initMu.Lock()
	if ix.initStarted {
		ix.initMu.Unlock()
		return nil
	}
	ix.initStarted = true
	ix.initMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	log := zap.L().With(zap.String("component", "boundary.index"))
	countries, cellCountries, borderCells, err := ReadFile(path)
	if err != nil {
		log.Warn("boundary data unavailable, index stays uninitialized",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}

	ix.LoadBoundaries(countries)
	ix.cells.Load(cellCountries, borderCells)
	log.Info("boundary index initialized",
		zap.Int("countries", len(countries)),
		zap.Int("country_cells", len(cellCountries)),
		zap.Int("border_cells", len(borderCells)),
	)
	return nil
}

// LoadBoundaries installs a boundary set directly and marks the index
// initialized. The builder and tests use this to bypass the file format.
func (ix *Index) LoadBoundaries(countries []*geometry.CountryBoundary) {
	ix.mu.Lock()
	ix.boundaries = countries
	ix.ready = true
	ix.mu.Unlock()
}

// Initialized reports whether boundary data has been loaded.
func (ix *Index) Initialized() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.ready
}

// Countries returns the loaded boundary set, nil before initialization.
func (ix *Index) Countries() []*geometry.CountryBoundary {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.boundaries
}

// CacheStats exposes cell cache counters.
func (ix *Index) CacheStats() CacheStats { return ix.cells.Stats() }

// GetCountry resolves the coordinate to a country. Known border cells skip
// the single-country cache and always report the full candidate set. Cache
// misses run the full polygon test: one match is cached for the cell, zero
// matches report ocean without poisoning the cache, several matches
// permanently reclassify the cell as a border cell.
func (ix *Index) GetCountry(lat, lon float64) CountryLookupResult {
	boundaries, ok := ix.snapshot()
	if !ok {
		return CountryLookupResult{}
	}
	if !finite(lat) || !finite(lon) {
		return CountryLookupResult{}
	}

	cell, err := geohash.Encode(lat, lon, ix.precision)
	if err != nil {
		return CountryLookupResult{}
	}

	if _, isBorder := ix.cells.Candidates(cell); isBorder {
		matches := matchingCountries(lat, lon, boundaries)
		return CountryLookupResult{Border: true, Candidates: matches}
	}

	if code, hit := ix.cells.Country(cell); hit {
		return CountryLookupResult{Code: code}
	}

	matches := matchingCountries(lat, lon, boundaries)
	switch len(matches) {
	case 0:
		return CountryLookupResult{Ocean: true}
	case 1:
		ix.cells.StoreCountry(cell, matches[0])
		return CountryLookupResult{Code: matches[0]}
	default:
		ix.cells.MarkBorder(cell, matches)
		return CountryLookupResult{Border: true, Candidates: matches}
	}
}

// IsPointInCountry reports whether the point lies inside the named
// country's polygons, independent of any cache state.
func (ix *Index) IsPointInCountry(lat, lon float64, code string) bool {
	boundaries, ok := ix.snapshot()
	if !ok {
		return false
	}
	for _, c := range boundaries {
		if c.Code == code {
			return geometry.IsPointInCountry(lat, lon, c)
		}
	}
	return false
}

// GetCandidateCountries returns every country whose polygons contain the
// point, bypassing the cache. Callers wanting their own border tie-break
// policy start here.
func (ix *Index) GetCandidateCountries(lat, lon float64) []string {
	boundaries, ok := ix.snapshot()
	if !ok {
		return nil
	}
	return matchingCountries(lat, lon, boundaries)
}

// SaveTo persists the boundary set and both cache maps to path.
func (ix *Index) SaveTo(path string) error {
	boundaries, _ := ix.snapshot()
	countries, border := ix.cells.Snapshot()
	return WriteFile(path, boundaries, countries, border)
}

func (ix *Index) snapshot() ([]*geometry.CountryBoundary, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.boundaries, ix.ready
}

// matchingCountries runs the full polygon test over every country whose
// union bounding box admits the point. Results are sorted by code so border
// candidate lists are deterministic.
func matchingCountries(lat, lon float64, boundaries []*geometry.CountryBoundary) []string {
	var matches []string
	for _, c := range boundaries {
		if !c.BBox().Contains(lat, lon) {
			continue
		}
		if geometry.IsPointInCountry(lat, lon, c) {
			matches = append(matches, c.Code)
		}
	}
	sort.Strings(matches)
	return matches
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
