package geocoding

import (
	"fmt"
	"strings"

	"placefinder/internal/placesearch"
	"placefinder/platform/sanitize"

	"github.com/tidwall/gjson"
)

// parsePlaces splits a Nominatim jsonv2 answer into its place objects.
func parsePlaces(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, errMalformedPayload
	}
	root := gjson.ParseBytes(body)
	if msg := root.Get("error"); msg.Exists() {
		return nil, fmt.Errorf("nominatim: %s", errorMessage(msg))
	}
	if !root.IsArray() {
		return nil, errMalformedPayload
	}
	return root.Array(), nil
}

func errorMessage(msg gjson.Result) string {
	if msg.IsObject() {
		return msg.Get("message").String()
	}
	return msg.String()
}

func buildSuggestion(place gjson.Result) (placesearch.Suggestion, bool) {
	ref := osmRef(place)
	label := buildLabel(place)
	if ref == "" || label == "" {
		return placesearch.Suggestion{}, false
	}
	return placesearch.Suggestion{Label: label, Ref: ref}, true
}

// osmRef renders the lookup handle, e.g. "R1903516" for a relation.
func osmRef(place gjson.Result) string {
	osmType := place.Get("osm_type").String()
	osmID := place.Get("osm_id")
	if osmType == "" || !osmID.Exists() {
		return ""
	}
	return strings.ToUpper(osmType[:1]) + osmID.Raw
}

// buildLabel prefers the place name followed by its locality and falls
// back to the full display name.
func buildLabel(place gjson.Result) string {
	display := sanitize.Label(place.Get("display_name").String())
	name := sanitize.Label(place.Get("name").String())
	if name == "" {
		return display
	}

	address := place.Get("address")
	parts := []string{name}
	for _, key := range []string{"city", "town", "village", "state", "country"} {
		v := sanitize.Label(address.Get(key).String())
		if v == "" || v == name || contains(parts, v) {
			continue
		}
		parts = append(parts, v)
	}
	if len(parts) == 1 && display != "" {
		return display
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func buildDetail(place gjson.Result) (placesearch.GeocodeDetail, bool) {
	lat, lon := place.Get("lat"), place.Get("lon")
	if !lat.Exists() || !lon.Exists() {
		return placesearch.GeocodeDetail{}, false
	}

	detail := placesearch.GeocodeDetail{
		Point:      placesearch.Point{Lat: lat.Float(), Lon: lon.Float()},
		Extent:     parseExtent(place.Get("boundingbox")),
		Attributes: flattenAttributes(place),
	}
	return detail, true
}

// parseExtent reads Nominatim's [south, north, west, east] bounding box.
func parseExtent(bbox gjson.Result) *placesearch.Extent {
	values := bbox.Array()
	if len(values) != 4 {
		return nil
	}
	extent := placesearch.Extent{
		South: values[0].Float(),
		North: values[1].Float(),
		West:  values[2].Float(),
		East:  values[3].Float(),
	}
	if extent.South > extent.North || extent.West > extent.East {
		return nil
	}
	return &extent
}

// flattenAttributes copies the descriptive scalar fields and every address
// component into a flat string map.
func flattenAttributes(place gjson.Result) map[string]string {
	attrs := make(map[string]string)
	for _, key := range []string{"display_name", "name", "category", "type", "addresstype", "place_rank", "importance"} {
		if v := sanitize.Label(place.Get(key).String()); v != "" {
			attrs[key] = v
		}
	}
	if ref := osmRef(place); ref != "" {
		attrs["osm_ref"] = ref
	}
	place.Get("address").ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			return true
		}
		if v := sanitize.Label(value.Str); v != "" {
			attrs["address."+key.String()] = v
		}
		return true
	})
	return attrs
}
