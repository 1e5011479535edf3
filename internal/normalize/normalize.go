// Package normalize canonicalizes identifier and title fields so two
// independently keyed tables can be joined.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Absent is the identifier assigned to missing values. It never matches.
const Absent = "nan"

var trailingZeroPattern = regexp.MustCompile(`\.0+$`)

// ID returns the normalized form of a raw identifier: trimmed, stripped of a
// trailing ".0" coercion artifact, and unwrapped from one pair of enclosing
// double quotes. A quote on only one side is kept.
func ID(raw string, present bool) string {
	if !present {
		return Absent
	}
	value := strings.TrimSpace(raw)
	value = trailingZeroPattern.ReplaceAllString(value, "")
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}
	return value
}

// IDs normalizes a column of identifiers, preserving length and order.
func IDs(values []string, present []bool) []string {
	out := make([]string, len(values))
	for i, value := range values {
		ok := i < len(present) && present[i]
		out[i] = ID(value, ok)
	}
	return out
}

// IDColumn picks the identifier column from a header, preferring "id" over
// "movie_id".
func IDColumn(header []string) (string, bool) {
	var hasMovieID bool
	for _, name := range header {
		switch name {
		case "id":
			return name, true
		case "movie_id":
			hasMovieID = true
		}
	}
	if hasMovieID {
		return "movie_id", true
	}
	return "", false
}

// Positional returns row-index identifiers "0".."n-1" for tables without an
// identifier column.
func Positional(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

// TitleKey returns the case-insensitive, whitespace-trimmed join key for a
// title.
func TitleKey(title string) string {
	return strings.TrimSpace(cases.Fold().String(title))
}
