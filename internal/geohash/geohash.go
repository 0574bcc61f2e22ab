// Package geohash implements the standard base-32 geohash codec. It knows
// nothing about country geometry; hashes serve purely as deterministic
// spatial bucketing keys for the boundary index's caches and for gazetteer
// clustering.
package geohash

import (
	"strings"

	"github.com/rotisserie/eris"
)

const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// MaxPrecision is the longest supported hash. Twelve characters resolve to
// roughly 3.7 cm; anything finer is meaningless for float64 coordinates.
const MaxPrecision = 12

// Encode quantizes the coordinate into a base-32 cell identifier of the
// given length via interleaved bisection of the longitude and latitude
// ranges. Precision outside [1, MaxPrecision] is a programmer error and is
// rejected, never clamped.
func Encode(lat, lon float64, precision int) (string, error) {
	if precision < 1 || precision > MaxPrecision {
		return "", eris.Errorf("geohash: precision %d out of range [1, %d]", precision, MaxPrecision)
	}

	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}

	var sb strings.Builder
	sb.Grow(precision)

	idx := 0
	bit := 0
	evenBit := true
	for sb.Len() < precision {
		if evenBit {
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon >= mid {
				idx |= 1 << (4 - bit)
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat >= mid {
				idx |= 1 << (4 - bit)
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}
		evenBit = !evenBit

		if bit < 4 {
			bit++
		} else {
			sb.WriteByte(alphabet[idx])
			bit = 0
			idx = 0
		}
	}
	return sb.String(), nil
}

// DecodeCenter returns the coordinate at the center of the cell named by the
// hash. Empty or over-long hashes and characters outside the geohash
// alphabet are rejected.
func DecodeCenter(hash string) (lat, lon float64, err error) {
	if hash == "" || len(hash) > MaxPrecision {
		return 0, 0, eris.Errorf("geohash: invalid hash length %d", len(hash))
	}

	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}

	evenBit := true
	for _, c := range hash {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return 0, 0, eris.Errorf("geohash: invalid character %q", c)
		}
		for bit := 4; bit >= 0; bit-- {
			high := idx>>bit&1 == 1
			if evenBit {
				mid := (lonRange[0] + lonRange[1]) / 2
				if high {
					lonRange[0] = mid
				} else {
					lonRange[1] = mid
				}
			} else {
				mid := (latRange[0] + latRange[1]) / 2
				if high {
					latRange[0] = mid
				} else {
					latRange[1] = mid
				}
			}
			evenBit = !evenBit
		}
	}

	return (latRange[0] + latRange[1]) / 2, (lonRange[0] + lonRange[1]) / 2, nil
}
