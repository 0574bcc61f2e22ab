package geometry

import "math"

// IsPointInRing runs an even-odd ray cast of the point against the ring.
// Non-finite coordinates and degenerate rings (under three effective
// vertices, or zero enclosed area) always return false. A cheap envelope
// check rejects far-away points before any edge is visited.
//
// Points exactly on a vertex or edge may land on either side; the answer is
// deterministic for a given ring but not specified. Self-intersecting and
// duplicate-vertex rings are tolerated with best-effort results.
func IsPointInRing(lat, lon float64, ring PolygonRing) bool {
	if !finite(lat) || !finite(lon) {
		return false
	}
	if ring.Degenerate() {
		return false
	}
	if !ring.BBox().Contains(lat, lon) {
		return false
	}

	n := ring.effectiveLen()
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := ring.Points[i].Lat, ring.Points[i].Lon
		yj, xj := ring.Points[j].Lat, ring.Points[j].Lon
		if (yi > lat) == (yj > lat) {
			continue
		}
		// Horizontal ray toward +lon; the tiny denominator guard keeps
		// near-horizontal edges from dividing by zero.
		if lon < (xj-xi)*(lat-yi)/(yj-yi+math.SmallestNonzeroFloat64)+xi {
			inside = !inside
		}
	}
	return inside
}

// IsPointInPolygon reports whether the point is inside the exterior ring and
// outside every hole. Even-odd semantics over holes model enclaves such as
// Vatican City inside Italy.
func IsPointInPolygon(lat, lon float64, poly Polygon) bool {
	if !IsPointInRing(lat, lon, poly.Exterior) {
		return false
	}
	for _, hole := range poly.Holes {
		if IsPointInRing(lat, lon, hole) {
			return false
		}
	}
	return true
}

// IsPointInCountry reports whether the point lies inside any of the
// country's polygons. The union bounding box is checked first, then each
// polygon's own box, so a country made of many small territories rejects
// most points without touching ring data.
func IsPointInCountry(lat, lon float64, country *CountryBoundary) bool {
	if country == nil {
		return false
	}
	if !country.BBox().Contains(lat, lon) {
		return false
	}
	for _, poly := range country.Polygons {
		if !poly.BBox().Contains(lat, lon) {
			continue
		}
		if IsPointInPolygon(lat, lon, poly) {
			return true
		}
	}
	return false
}

// ClampLatitude forces the value into [-90, 90]. In-range values, including
// the poles themselves, pass through unchanged. NaN clamps to 0 so callers
// always receive a usable latitude.
func ClampLatitude(lat float64) float64 {
	switch {
	case math.IsNaN(lat):
		return 0
	case lat > 90:
		return 90
	case lat < -90:
		return -90
	default:
		return lat
	}
}

// NormalizeLongitude wraps the value into [-180, 180] with period 360,
// handling arbitrarily many wraps. Already-normalized values, including both
// antimeridian representations, pass through unchanged. NaN normalizes to 0.
func NormalizeLongitude(lon float64) float64 {
	if math.IsNaN(lon) {
		return 0
	}
	if lon >= -180 && lon <= 180 {
		return lon
	}
	if math.IsInf(lon, 0) {
		return 0
	}
	r := math.Mod(lon+180, 360)
	if r < 0 {
		r += 360
	}
	return r - 180
}
