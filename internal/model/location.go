// Package model holds the data types shared across the geocoding core's
// public seams.
package model

// LocationData is the structured political geography handed to the
// destination-path templating layer. Whether Country renders as a code or a
// display name is that layer's decision; this core only fills the fields it
// can resolve and leaves the rest empty.
type LocationData struct {
	District string `json:"district,omitempty"`
	City     string `json:"city,omitempty"`
	County   string `json:"county,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Empty reports whether nothing was resolved.
func (l LocationData) Empty() bool {
	return l == LocationData{}
}
