package boundary

import (
	"sync"
	"sync/atomic"
)

// CellCache holds the two geohash-keyed maps the index resolves through: a
// single-country cache for cells known to lie entirely within one country,
// and a border-cell map for cells observed to straddle more than one. A cell
// lives in at most one of the two, and once a cell is marked as border it
// never returns to the single-country side.
type CellCache struct {
	mu        sync.RWMutex
	countries map[string]string
	border    map[string][]string

	lookups atomic.Int64
	hits    atomic.Int64
}

// CacheStats is a point-in-time snapshot of cache behaviour.
type CacheStats struct {
	CountryCells int     `json:"country_cells"`
	BorderCells  int     `json:"border_cells"`
	Lookups      int64   `json:"lookups"`
	Hits         int64   `json:"hits"`
	HitRate      float64 `json:"hit_rate"`
}

// NewCellCache creates an empty cache.
func NewCellCache() *CellCache {
	return &CellCache{
		countries: make(map[string]string),
		border:    make(map[string][]string),
	}
}

// Country returns the cached single-country resolution for a cell.
func (c *CellCache) Country(cell string) (string, bool) {
	c.lookups.Add(1)
	c.mu.RLock()
	code, ok := c.countries[cell]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	}
	return code, ok
}

// Candidates returns the border-cell candidate list for a cell. The returned
// slice is a copy; callers may not mutate shared state.
func (c *CellCache) Candidates(cell string) ([]string, bool) {
	c.mu.RLock()
	codes, ok := c.border[cell]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	out := make([]string, len(codes))
	copy(out, codes)
	return out, true
}

// StoreCountry records a single-country resolution for a cell. Cells already
// reclassified as border cells are left alone: border status is permanent.
func (c *CellCache) StoreCountry(cell, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, isBorder := c.border[cell]; isBorder {
		return
	}
	c.countries[cell] = code
}

// MarkBorder moves a cell into the border map with the given candidate set,
// evicting any single-country entry. Marking an already-border cell merges
// the candidate lists so the set only ever grows.
func (c *CellCache) MarkBorder(cell string, codes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.countries, cell)
	existing := c.border[cell]
	merged := existing
	for _, code := range codes {
		if !containsString(merged, code) {
			merged = append(merged, code)
		}
	}
	c.border[cell] = merged
}

// Snapshot copies both maps for persistence.
func (c *CellCache) Snapshot() (countries map[string]string, border map[string][]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	countries = make(map[string]string, len(c.countries))
	for k, v := range c.countries {
		countries[k] = v
	}
	border = make(map[string][]string, len(c.border))
	for k, v := range c.border {
		cp := make([]string, len(v))
		copy(cp, v)
		border[k] = cp
	}
	return countries, border
}

// Load replaces both maps, typically from a persisted boundary file. Nil
// maps are treated as empty.
func (c *CellCache) Load(countries map[string]string, border map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.countries = make(map[string]string, len(countries))
	for k, v := range countries {
		c.countries[k] = v
	}
	c.border = make(map[string][]string, len(border))
	for k, v := range border {
		cp := make([]string, len(v))
		copy(cp, v)
		c.border[k] = cp
	}
	// A cell must live on exactly one side; border wins.
	for k := range c.border {
		delete(c.countries, k)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *CellCache) Stats() CacheStats {
	c.mu.RLock()
	nCountry := len(c.countries)
	nBorder := len(c.border)
	c.mu.RUnlock()

	lookups := c.lookups.Load()
	hits := c.hits.Load()
	s := CacheStats{
		CountryCells: nCountry,
		BorderCells:  nBorder,
		Lookups:      lookups,
		Hits:         hits,
	}
	if lookups > 0 {
		s.HitRate = float64(hits) / float64(lookups)
	}
	return s
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
