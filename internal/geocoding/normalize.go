package geocoding

import (
	"strings"

	"placefinder/internal/placesearch"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const keyPrefix = "placefinder:suggest:"

// NormalizeQuery folds case, composes Unicode and collapses whitespace so
// that "  HÀ Nội" and "hà nội" share a cache entry.
func NormalizeQuery(q string) string {
	q = norm.NFC.String(q)
	q = cases.Fold().String(q)
	return strings.Join(strings.Fields(q), " ")
}

func suggestKey(text string, region placesearch.RegionFilter) string {
	return keyPrefix + strings.ToLower(region.CountryCodes) + ":" + NormalizeQuery(text)
}
