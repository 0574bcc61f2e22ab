// Package geocoder composes the boundary index and the gazetteer engine into
// the single ReverseGeocode entry point used by the photo pipeline: resolve
// the country from polygon data first, then find the nearest named place
// inside that country, falling back to an unfiltered nearest-place lookup
// whenever boundary data cannot produce a single answer.
package geocoder

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fotoflow/revgeo/internal/boundary"
	"github.com/fotoflow/revgeo/internal/gazetteer"
	"github.com/fotoflow/revgeo/internal/model"
)

// Options configures a Geocoder instance.
type Options struct {
	// BoundaryPath is the .geobounds file; empty or missing leaves the
	// boundary tier disabled.
	BoundaryPath string
	// GazetteerPath is the flat GeoNames-style TSV.
	GazetteerPath string
	// GazetteerDBPath, when set, is preferred over GazetteerPath and read
	// as a previously imported sqlite database.
	GazetteerDBPath string
	// UseBoundaryFilter gates country-filtered place lookups; with it off
	// the geocoder behaves as a plain nearest-place engine.
	UseBoundaryFilter bool
	// CachePrecision is the geohash length for boundary cache cells; zero
	// means boundary.DefaultCachePrecision.
	CachePrecision int
}

// Stats aggregates counters from both tiers.
type Stats struct {
	Boundary boundary.CacheStats   `json:"boundary"`
	Places   gazetteer.LookupStats `json:"places"`
}

// Geocoder owns one boundary index and one place engine. Instances are
// independent; making one process-wide is the composition root's choice.
type Geocoder struct {
	opts   Options
	index  *boundary.Index
	places *gazetteer.Engine
}

// New creates a geocoder with its own index and engine. Nothing is loaded
// until InitializeAsync runs.
func New(opts Options) *Geocoder {
	return &Geocoder{
		opts:   opts,
		index:  boundary.NewIndex(opts.CachePrecision),
		places: gazetteer.NewEngine(),
	}
}

// InitializeAsync loads both tiers concurrently and returns once both have
// finished attempting to load, regardless of individual success — a missing
// boundary file or gazetteer only narrows the fallback chain. Context
// cancellation is the only error surfaced.
func (g *Geocoder) InitializeAsync(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return g.index.Initialize(ctx, g.opts.BoundaryPath)
	})
	eg.Go(func() error {
		if g.opts.GazetteerDBPath != "" {
			return g.places.LoadFromDB(ctx, g.opts.GazetteerDBPath)
		}
		return g.places.LoadFromFile(ctx, g.opts.GazetteerPath)
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	// Let name-based country filters ("Germany") resolve against the codes
	// place records carry.
	if countries := g.index.Countries(); len(countries) > 0 {
		names := make(map[string]string, len(countries))
		for _, c := range countries {
			names[c.Code] = c.Name
		}
		g.places.SetCountryNames(names)
	}

	zap.L().Info("geocoder initialized",
		zap.Bool("boundary", g.index.Initialized()),
		zap.Bool("gazetteer", g.places.IsInitialized()),
		zap.Int("places", g.places.Len()),
	)
	return nil
}

// ReverseGeocode resolves a coordinate to LocationData. When the boundary
// tier resolves a single country the nearest-place search is filtered to it,
// so a geographically closer place across a border never wins. Ocean,
// multi-candidate border cells, and an uninitialized index all fall back to
// the unfiltered search. Returns nil only when neither tier produces a
// result. Poles, the antimeridian, and (0,0) are all tolerated.
func (g *Geocoder) ReverseGeocode(lat, lon float64) *model.LocationData {
	if code := g.resolveCountry(lat, lon); code != "" {
		if p := g.places.FindNearest(lat, lon, gazetteer.FindOptions{CountryFilter: code}); p != nil {
			loc := p.Location()
			return &loc
		}
		// No place inside the resolved country; fall through unfiltered.
	}
	return g.places.ReverseGeocode(lat, lon)
}

// resolveCountry returns the alpha-2 code the boundary tier commits to, or
// empty when it is disabled, uninitialized, or inconclusive. A border cell
// whose candidate set collapses to one country at this exact point counts
// as resolved: the cell is ambiguous, the point is not.
func (g *Geocoder) resolveCountry(lat, lon float64) string {
	if !g.opts.UseBoundaryFilter || !g.index.Initialized() {
		return ""
	}
	res := g.index.GetCountry(lat, lon)
	switch {
	case res.Code != "":
		return res.Code
	case res.Border && len(res.Candidates) == 1:
		return res.Candidates[0]
	default:
		return ""
	}
}

// Index exposes the boundary tier, mainly for callers that want raw
// candidate sets for their own tie-breaking.
func (g *Geocoder) Index() *boundary.Index { return g.index }

// Places exposes the gazetteer tier.
func (g *Geocoder) Places() *gazetteer.Engine { return g.places }

// Stats returns counters from both tiers.
func (g *Geocoder) Stats() Stats {
	return Stats{
		Boundary: g.index.CacheStats(),
		Places:   g.places.Stats(),
	}
}
