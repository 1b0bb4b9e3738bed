// Package sanitize cleans user-provided report text before it is stored or
// echoed into alert emails.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTML removes HTML tags, including tags hidden behind entity encoding.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	return htmlTagRegex.ReplaceAllString(result, "")
}

// Text strips HTML and control characters and collapses runs of whitespace
// into single spaces.
func Text(s string) string {
	result := StripHTML(s)
	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, result)
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
