// Package placesearch implements the map search screen: type-ahead place
// suggestions with replace-on-keystroke cancellation, the results panel
// state machine, and selection of a suggestion into a map marker.
//
// Rendering, location tracking and the geocoding transport are collaborators
// reached through the interfaces in surfaces.go.
package placesearch

import "fmt"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.Lat, p.Lon)
}

// Extent is a bounding box in WGS84 degrees.
type Extent struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Center returns the midpoint of the extent.
func (e Extent) Center() Point {
	return Point{Lat: (e.South + e.North) / 2, Lon: (e.West + e.East) / 2}
}

// RegionFilter narrows suggestions to a set of countries.
type RegionFilter struct {
	// CountryCodes is a comma separated list of ISO 3166-1 alpha-2 codes.
	CountryCodes string `json:"countryCodes"`
}

// Suggestion is a lightweight candidate place returned by type-ahead search.
// It carries no coordinates; Ref is the provider's handle for resolving it.
type Suggestion struct {
	Label string `json:"label"`
	Ref   string `json:"ref"`
}

// GeocodeDetail is the resolved detail of a chosen suggestion.
type GeocodeDetail struct {
	Point      Point             `json:"point"`
	Extent     *Extent           `json:"extent,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// AutoPanMode controls how the location display follows the device.
type AutoPanMode string

const (
	AutoPanOff      AutoPanMode = "off"
	AutoPanRecenter AutoPanMode = "recenter"
)
