package geometry

import (
	"math"

	"github.com/rotisserie/eris"
)

// quantScale converts degrees to the compact int16 representation used by
// the boundary file format. One unit is 0.01 degree, roughly 1.1 km of
// latitude, which is far below the resolution of the simplified country
// polygons this package works with.
const quantScale = 100

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// QuantizedPoint is the lossy storage form of a GeoPoint: each coordinate
// rounded to 0.01 degree and held in an int16.
type QuantizedPoint struct {
	Lat int16
	Lon int16
}

// Quantize rounds the point to the compact storage form. Coordinates outside
// the representable range are clamped rather than wrapped.
func (p GeoPoint) Quantize() QuantizedPoint {
	return QuantizedPoint{
		Lat: quantize(p.Lat),
		Lon: quantize(p.Lon),
	}
}

// Dequantize converts the storage form back to degrees. The round trip
// GeoPoint → QuantizedPoint → GeoPoint stays within 0.005 degree per axis.
func (q QuantizedPoint) Dequantize() GeoPoint {
	return GeoPoint{
		Lat: float64(q.Lat) / quantScale,
		Lon: float64(q.Lon) / quantScale,
	}
}

func quantize(deg float64) int16 {
	v := math.Round(deg * quantScale)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// PolygonRing is an ordered, logically closed sequence of points. A ring
// either bounds territory or, when Hole is set, punches a hole in its
// enclosing exterior ring.
type PolygonRing struct {
	Points []GeoPoint
	Hole   bool
}

// effectiveLen returns the number of vertices ignoring an explicit closing
// point that duplicates the first.
func (r PolygonRing) effectiveLen() int {
	n := len(r.Points)
	if n > 1 && r.Points[0] == r.Points[n-1] {
		return n - 1
	}
	return n
}

// Degenerate reports whether the ring cannot enclose any area: fewer than
// three effective vertices, or all vertices collinear. Degenerate rings never
// contain any point.
func (r PolygonRing) Degenerate() bool {
	if r.effectiveLen() < 3 {
		return true
	}
	return r.signedArea() == 0
}

// signedArea is the shoelace sum over the ring in degree² units. Only the
// zero / non-zero distinction is used; self-intersecting input makes the
// magnitude meaningless but keeps the zero test safe.
func (r PolygonRing) signedArea() float64 {
	n := r.effectiveLen()
	var sum float64
	for i := 0; i < n; i++ {
		a := r.Points[i]
		b := r.Points[(i+1)%n]
		sum += a.Lon*b.Lat - b.Lon*a.Lat
	}
	return sum / 2
}

// BBox returns the envelope of the ring's points. An empty ring yields a
// box that contains nothing.
func (r PolygonRing) BBox() BoundingBox {
	return BBoxFromPoints(r.Points)
}

// Polygon is one exterior ring plus zero or more holes. A point is inside
// the polygon iff it is inside the exterior and outside every hole.
type Polygon struct {
	Exterior PolygonRing
	Holes    []PolygonRing
}

// BBox returns the exterior ring's envelope. Holes cannot extend it.
func (p Polygon) BBox() BoundingBox {
	return p.Exterior.BBox()
}

// VertexCount counts vertices across the exterior and all holes.
func (p Polygon) VertexCount() int {
	n := len(p.Exterior.Points)
	for _, h := range p.Holes {
		n += len(h.Points)
	}
	return n
}

// CountryBoundary is the full territory of one country: possibly many
// disjoint polygons (mainland, islands, exclaves). The union bounding box
// and vertex count are computed once at construction so per-query rejection
// is O(1).
type CountryBoundary struct {
	Code     string
	Name     string
	Alpha3   string
	Polygons []Polygon

	bbox        BoundingBox
	vertexCount int
}

// NewCountryBoundary builds a boundary and derives its union bounding box.
// The polygon slice must be non-nil; beyond that the model is permissive —
// empty strings, unusual names and empty polygon slices are all accepted,
// since semantic validation of political data is not this package's job.
func NewCountryBoundary(code, name, alpha3 string, polygons []Polygon) (*CountryBoundary, error) {
	if polygons == nil {
		return nil, eris.Errorf("geometry: country %q: polygons must not be nil", code)
	}
	cb := &CountryBoundary{
		Code:     code,
		Name:     name,
		Alpha3:   alpha3,
		Polygons: polygons,
	}
	cb.bbox = EmptyBox()
	for _, poly := range polygons {
		cb.bbox = cb.bbox.Union(poly.BBox())
		cb.vertexCount += poly.VertexCount()
	}
	return cb, nil
}

// BBox returns the union bounding box cached at construction.
func (c *CountryBoundary) BBox() BoundingBox { return c.bbox }

// VertexCount returns the total vertex count cached at construction.
func (c *CountryBoundary) VertexCount() int { return c.vertexCount }
