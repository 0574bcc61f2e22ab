package boundary

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fotoflow/revgeo/internal/geometry"
)

// BuildFromGeoJSON converts a GeoJSON FeatureCollection of country features
// into boundaries. Per the GeoJSON spec the first ring of each polygon is
// the exterior and the rest are holes, so no orientation sniffing is needed.
// Features sharing a country code merge into one boundary.
func BuildFromGeoJSON(path string, m Manifest) ([]*geometry.CountryBoundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read geojson %s", path)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: parse geojson %s", path)
	}

	acc := newBoundaryAccumulator()
	var skipped int

	for _, f := range fc.Features {
		code := propString(f.Properties, m.CodeField)
		name := propString(f.Properties, m.NameField)
		var alpha3 string
		if m.Alpha3Field != "" {
			alpha3 = propString(f.Properties, m.Alpha3Field)
		}
		if code == "" {
			skipped++
			continue
		}

		var polys []geometry.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if p, ok := convertOrbPolygon(g); ok {
				polys = append(polys, p)
			}
		case orb.MultiPolygon:
			for _, op := range g {
				if p, ok := convertOrbPolygon(op); ok {
					polys = append(polys, p)
				}
			}
		default:
			skipped++
			continue
		}

		acc.add(code, name, alpha3, polys)
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped geojson features",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return acc.finish()
}

func convertOrbPolygon(p orb.Polygon) (geometry.Polygon, bool) {
	if len(p) == 0 || len(p[0]) < 3 {
		return geometry.Polygon{}, false
	}
	out := geometry.Polygon{Exterior: convertOrbRing(p[0], false)}
	for _, hole := range p[1:] {
		if len(hole) < 3 {
			continue
		}
		out.Holes = append(out.Holes, convertOrbRing(hole, true))
	}
	return out, true
}

func convertOrbRing(r orb.Ring, hole bool) geometry.PolygonRing {
	pts := make([]geometry.GeoPoint, 0, len(r))
	for _, p := range r {
		pts = append(pts, geometry.GeoPoint{Lat: p.Lat(), Lon: p.Lon()})
	}
	return geometry.PolygonRing{Points: pts, Hole: hole}
}

func propString(props geojson.Properties, key string) string {
	if key == "" {
		return ""
	}
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
