package geometry

import "math"

// BoundingBox is a lat/lon envelope. A box with MinLat > MaxLat (or
// MinLon > MaxLon) is empty and contains nothing; EmptyBox constructs the
// canonical empty value.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// EmptyBox returns a box that contains no point and is the identity
// element for Union.
func EmptyBox() BoundingBox {
	return BoundingBox{
		MinLat: math.Inf(1),
		MinLon: math.Inf(1),
		MaxLat: math.Inf(-1),
		MaxLon: math.Inf(-1),
	}
}

// Empty reports whether the box contains no point.
func (b BoundingBox) Empty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// Contains reports whether the point falls inside the box, edges included.
// NaN and infinite coordinates are never contained.
func (b BoundingBox) Contains(lat, lon float64) bool {
	if !finite(lat) || !finite(lon) {
		return false
	}
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Intersects reports whether the two boxes share any point; touching edges
// and corners count as intersecting.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.MinLat <= o.MaxLat && o.MinLat <= b.MaxLat &&
		b.MinLon <= o.MaxLon && o.MinLon <= b.MaxLon
}

// Union returns the smallest box covering both inputs.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return BoundingBox{
		MinLat: math.Min(b.MinLat, o.MinLat),
		MinLon: math.Min(b.MinLon, o.MinLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
	}
}

// BBoxFromPoints returns the envelope of the given points, degenerate for a
// single point and empty for none. Non-finite coordinates are skipped.
func BBoxFromPoints(pts []GeoPoint) BoundingBox {
	box := EmptyBox()
	for _, p := range pts {
		if !finite(p.Lat) || !finite(p.Lon) {
			continue
		}
		box.MinLat = math.Min(box.MinLat, p.Lat)
		box.MinLon = math.Min(box.MinLon, p.Lon)
		box.MaxLat = math.Max(box.MaxLat, p.Lat)
		box.MaxLon = math.Max(box.MaxLon, p.Lon)
	}
	return box
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
