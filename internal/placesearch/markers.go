package placesearch

// Marker is a pin placed for a selected place.
type Marker struct {
	Label      string            `json:"label"`
	Point      Point             `json:"point"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// MarkerOverlay is the append-only list of placed markers; Clear is the
// only removal.
type MarkerOverlay struct {
	markers []Marker
}

func (o *MarkerOverlay) Add(m Marker) {
	o.markers = append(o.markers, m)
}

// Clear drops every marker and returns how many were removed.
func (o *MarkerOverlay) Clear() int {
	n := len(o.markers)
	o.markers = nil
	return n
}

func (o *MarkerOverlay) All() []Marker {
	return append([]Marker(nil), o.markers...)
}
