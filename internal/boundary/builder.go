package boundary

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fotoflow/revgeo/internal/geometry"
)

// Manifest names the attribute fields a boundary source keeps country
// metadata in. Natural Earth admin-0 data, for example, uses ISO_A2 / NAME /
// ISO_A3.
type Manifest struct {
	CodeField   string `yaml:"code_field"`
	NameField   string `yaml:"name_field"`
	Alpha3Field string `yaml:"alpha3_field"`
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, eris.Wrapf(err, "boundary: read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, eris.Wrapf(err, "boundary: parse manifest %s", path)
	}
	if m.CodeField == "" || m.NameField == "" {
		return Manifest{}, eris.New("boundary: manifest needs code_field and name_field")
	}
	return m, nil
}

// BuildFromShapefile converts an ESRI shapefile of country features into
// boundaries. Ring orientation decides nesting: shapefiles wind exterior
// rings clockwise and holes counter-clockwise; each hole attaches to the
// most recent exterior, which is how shapefile writers order parts. Features
// sharing a country code merge into one boundary.
func BuildFromShapefile(path string, m Manifest) ([]*geometry.CountryBoundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(field string) string {
		idx, ok := fieldIdx[strings.ToLower(field)]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	acc := newBoundaryAccumulator()
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly.NumParts == 0 || len(poly.Points) == 0 {
			skipped++
			continue
		}

		code := attr(m.CodeField)
		name := attr(m.NameField)
		var alpha3 string
		if m.Alpha3Field != "" {
			alpha3 = attr(m.Alpha3Field)
		}
		if code == "" {
			skipped++
			continue
		}

		acc.add(code, name, alpha3, splitShapefileParts(poly))
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return acc.finish()
}

// splitShapefileParts turns shapefile parts into polygons, assigning
// counter-clockwise rings as holes of the preceding exterior.
func splitShapefileParts(p *shp.Polygon) []geometry.Polygon {
	var polys []geometry.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		pts := make([]geometry.GeoPoint, 0, end-start)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
			pts = append(pts, geometry.GeoPoint{Lat: p.Points[j].Y, Lon: p.Points[j].X})
		}

		hole := xy.IsRingCounterClockwise(geom.XY, flat)
		ring := geometry.PolygonRing{Points: pts, Hole: hole}
		if hole && len(polys) > 0 {
			polys[len(polys)-1].Holes = append(polys[len(polys)-1].Holes, ring)
			continue
		}
		ring.Hole = false
		polys = append(polys, geometry.Polygon{Exterior: ring})
	}
	return polys
}

// boundaryAccumulator merges per-feature polygons into one boundary per
// country code, preserving first-seen order.
type boundaryAccumulator struct {
	order []string
	byCode map[string]*pendingBoundary
}

type pendingBoundary struct {
	name     string
	alpha3   string
	polygons []geometry.Polygon
}

func newBoundaryAccumulator() *boundaryAccumulator {
	return &boundaryAccumulator{byCode: make(map[string]*pendingBoundary)}
}

func (a *boundaryAccumulator) add(code, name, alpha3 string, polys []geometry.Polygon) {
	pb, ok := a.byCode[code]
	if !ok {
		pb = &pendingBoundary{name: name, alpha3: alpha3}
		a.byCode[code] = pb
		a.order = append(a.order, code)
	}
	if pb.name == "" {
		pb.name = name
	}
	if pb.alpha3 == "" {
		pb.alpha3 = alpha3
	}
	pb.polygons = append(pb.polygons, polys...)
}

func (a *boundaryAccumulator) finish() ([]*geometry.CountryBoundary, error) {
	out := make([]*geometry.CountryBoundary, 0, len(a.order))
	for _, code := range a.order {
		pb := a.byCode[code]
		polys := pb.polygons
		if polys == nil {
			polys = []geometry.Polygon{}
		}
		cb, err := geometry.NewCountryBoundary(code, pb.name, pb.alpha3, polys)
		if err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, nil
}
