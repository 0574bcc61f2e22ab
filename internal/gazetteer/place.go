// Package gazetteer holds an immutable in-memory set of named places and
// answers nearest-neighbor queries over it with country and city-class
// filters. It is the coarse tier of the geocoder: always available once its
// flat data file loads, and the fallback when boundary data cannot resolve
// a country.
package gazetteer

import "github.com/fotoflow/revgeo/internal/model"

// FeatureClass is the closed set of GeoNames feature classes. Keeping the
// variants exhaustive makes the cities-only filter a simple comparison
// instead of open-ended string matching.
type FeatureClass uint8

const (
	ClassOther     FeatureClass = iota
	ClassAdmin                  // A: administrative divisions
	ClassWater                  // H: streams, lakes
	ClassArea                   // L: parks, regions
	ClassPopulated              // P: cities, villages
	ClassRoad                   // R: roads, railroads
	ClassSpot                   // S: buildings, spot features
	ClassTerrain                // T: mountains, dunes
	ClassUndersea               // U: undersea features
	ClassVegetation             // V: forests, heaths
)

// ParseFeatureClass maps a GeoNames feature-class letter onto the enum.
// Unknown letters become ClassOther.
func ParseFeatureClass(c byte) FeatureClass {
	switch c {
	case 'A':
		return ClassAdmin
	case 'H':
		return ClassWater
	case 'L':
		return ClassArea
	case 'P':
		return ClassPopulated
	case 'R':
		return ClassRoad
	case 'S':
		return ClassSpot
	case 'T':
		return ClassTerrain
	case 'U':
		return ClassUndersea
	case 'V':
		return ClassVegetation
	default:
		return ClassOther
	}
}

// Letter returns the GeoNames feature-class letter, '?' for ClassOther.
func (c FeatureClass) Letter() byte {
	switch c {
	case ClassAdmin:
		return 'A'
	case ClassWater:
		return 'H'
	case ClassArea:
		return 'L'
	case ClassPopulated:
		return 'P'
	case ClassRoad:
		return 'R'
	case ClassSpot:
		return 'S'
	case ClassTerrain:
		return 'T'
	case ClassUndersea:
		return 'U'
	case ClassVegetation:
		return 'V'
	default:
		return '?'
	}
}

// Place is one gazetteer record.
type Place struct {
	ID          int64
	Name        string
	Lat         float64
	Lon         float64
	Class       FeatureClass
	CountryCode string
	Admin1      string // state / first-order division
	Admin2      string // county / second-order division
	Admin3      string // district / third-order division
	Population  int64
}

// IsCity reports whether the place is city-class (a populated place).
func (p Place) IsCity() bool { return p.Class == ClassPopulated }

// Location maps the place onto the LocationData consumed by the path
// templating layer.
func (p Place) Location() model.LocationData {
	return model.LocationData{
		District: p.Admin3,
		City:     p.Name,
		County:   p.Admin2,
		State:    p.Admin1,
		Country:  p.CountryCode,
	}
}
