// Package sanitize cleans third-party text before it is shown to clients.
// This is part of the platform layer and contains no business logic.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup, including markup hidden behind entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	// Re-strip after entity decode to catch encoded tags
	return htmlTagRegex.ReplaceAllString(result, "")
}

// Label makes a single-line display label: markup and control characters
// are removed and whitespace runs collapse to one space.
func Label(s string) string {
	s = StripHTML(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
