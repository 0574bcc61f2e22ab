package gazetteer

import (
	"context"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fotoflow/revgeo/internal/model"
)

const earthRadiusKm = 6371.0

// FindOptions narrows a nearest-place search. CountryFilter accepts an ISO
// alpha-2 code, or a country display name when the engine has been given a
// code→name table; CitiesOnly restricts results to populated places.
type FindOptions struct {
	CountryFilter string
	CitiesOnly    bool
}

// LookupStats counts nearest-place queries and how many produced a result.
type LookupStats struct {
	Lookups int64 `json:"lookups"`
	Hits    int64 `json:"hits"`
}

// Engine answers nearest-neighbor queries over an immutable place set. All
// query methods are safe for unbounded concurrent use; the place set is
// installed once at initialization and never mutated afterwards.
type Engine struct {
	mu          sync.RWMutex
	places      []Place
	nameToCode  map[string]string
	initialized bool

	lookups atomic.Int64
	hits    atomic.Int64
}

// NewEngine creates an empty, uninitialized engine. Every lookup on it
// returns nil until places are loaded.
func NewEngine() *Engine {
	return &Engine{nameToCode: make(map[string]string)}
}

// LoadFromFile streams a GeoNames-style TSV into the engine. A missing or
// unreadable file is not an error: the engine stays usable but empty so the
// orchestrator's fallback chain keeps working. Only context cancellation is
// surfaced.
func (e *Engine) LoadFromFile(ctx context.Context, path string) error {
	log := zap.L().With(zap.String("component", "gazetteer.engine"))

	f, err := os.Open(path)
	if err != nil {
		log.Warn("gazetteer unavailable, engine stays empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	defer func() { _ = f.Close() }()

	places, skipped, err := ParseAll(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		log.Warn("gazetteer unreadable, engine stays empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}

	e.SetPlaces(places)
	log.Info("gazetteer loaded",
		zap.String("path", path),
		zap.Int("places", len(places)),
		zap.Int("skipped", skipped),
	)
	return nil
}

// SetPlaces installs the place set and marks the engine initialized.
func (e *Engine) SetPlaces(places []Place) {
	e.mu.Lock()
	e.places = places
	e.initialized = true
	e.mu.Unlock()
}

// SetCountryNames registers a code→display-name table so CountryFilter also
// accepts names ("Germany" as well as "DE"), compared case- and
// diacritic-insensitively.
func (e *Engine) SetCountryNames(names map[string]string) {
	table := make(map[string]string, len(names))
	for code, name := range names {
		if name != "" {
			table[foldName(name)] = code
		}
	}
	e.mu.Lock()
	e.nameToCode = table
	e.mu.Unlock()
}

// IsInitialized reports whether a place set has been loaded, even an empty
// one.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// Len returns the number of loaded places.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.places)
}

// Stats returns lookup counters.
func (e *Engine) Stats() LookupStats {
	return LookupStats{Lookups: e.lookups.Load(), Hits: e.hits.Load()}
}

// FindNearest returns the place with minimum great-circle distance to the
// coordinate among those passing the filters, or nil when none qualify.
// Equidistant candidates tie-break deterministically: higher population
// first, then lexicographically smaller name, then lower place ID. Repeated
// identical queries always return field-identical results.
func (e *Engine) FindNearest(lat, lon float64, opts FindOptions) *Place {
	e.lookups.Add(1)
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil
	}

	e.mu.RLock()
	places := e.places
	filterCode := e.resolveCountryFilterLocked(opts.CountryFilter)
	e.mu.RUnlock()

	if opts.CountryFilter != "" && filterCode == "" {
		// Filter names a country no place record belongs to.
		return nil
	}

	var best *Place
	bestDist := math.Inf(1)
	for i := range places {
		p := &places[i]
		if opts.CitiesOnly && !p.IsCity() {
			continue
		}
		if filterCode != "" && p.CountryCode != filterCode {
			continue
		}
		d := haversineKm(lat, lon, p.Lat, p.Lon)
		if d < bestDist || (d == bestDist && best != nil && betterTie(p, best)) {
			best = p
			bestDist = d
		}
	}
	if best == nil {
		return nil
	}

	e.hits.Add(1)
	out := *best
	return &out
}

// ReverseGeocode maps the unrestricted nearest place to a LocationData, nil
// when the engine is empty.
func (e *Engine) ReverseGeocode(lat, lon float64) *model.LocationData {
	p := e.FindNearest(lat, lon, FindOptions{})
	if p == nil {
		return nil
	}
	loc := p.Location()
	return &loc
}

// resolveCountryFilterLocked maps a filter string onto the alpha-2 code used
// in place records. Two-letter filters are treated as codes directly; longer
// filters go through the registered display-name table. An empty return with
// a non-empty filter means nothing can match.
func (e *Engine) resolveCountryFilterLocked(filter string) string {
	if filter == "" {
		return ""
	}
	if len(filter) == 2 {
		return upperASCII(filter)
	}
	return e.nameToCode[foldName(filter)]
}

// betterTie prefers higher population, then smaller name, then lower ID.
func betterTie(a, b *Place) bool {
	if a.Population != b.Population {
		return a.Population > b.Population
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// haversineKm is the great-circle distance in kilometers. The spherical
// approximation is plenty for ranking nearest places.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}
