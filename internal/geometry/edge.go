package geometry

import "math"

// IsPointOnEdge reports whether the point lies within epsilon degrees of any
// edge or vertex of the ring. Callers use it to detect coordinates whose
// even-odd classification is numerically unstable. A non-positive epsilon
// never matches, and non-finite coordinates never match.
func IsPointOnEdge(lat, lon float64, ring PolygonRing, epsilon float64) bool {
	if epsilon <= 0 || math.IsNaN(epsilon) {
		return false
	}
	if !finite(lat) || !finite(lon) {
		return false
	}
	n := ring.effectiveLen()
	if n == 0 {
		return false
	}
	if n == 1 {
		return distance(lat, lon, ring.Points[0]) <= epsilon
	}
	for i := 0; i < n; i++ {
		a := ring.Points[i]
		b := ring.Points[(i+1)%n]
		if distanceToSegment(lat, lon, a, b) <= epsilon {
			return true
		}
	}
	return false
}

func distance(lat, lon float64, p GeoPoint) float64 {
	return math.Hypot(lat-p.Lat, lon-p.Lon)
}

// distanceToSegment is the planar degree-space distance from the point to
// the segment ab, projecting onto the segment and clamping to its ends.
func distanceToSegment(lat, lon float64, a, b GeoPoint) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	lenSq := dLat*dLat + dLon*dLon
	if lenSq == 0 {
		return distance(lat, lon, a)
	}
	t := ((lat-a.Lat)*dLat + (lon-a.Lon)*dLon) / lenSq
	t = math.Max(0, math.Min(1, t))
	return distance(lat, lon, GeoPoint{Lat: a.Lat + t*dLat, Lon: a.Lon + t*dLon})
}
