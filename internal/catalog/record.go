package catalog

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrEmptyTitle is returned when a record has no usable title.
var ErrEmptyTitle = errors.New("movie record requires a title")

// MovieRecord is the canonical flat representation of one movie.
type MovieRecord struct {
	Title    string   `json:"title"`
	Genre    string   `json:"genre"`
	Rating   float64  `json:"rating"`
	Year     int      `json:"year,omitempty"` // 0 when unknown
	Director string   `json:"director"`
	Cast     []string `json:"cast"`
	Overview string   `json:"overview"`
}

// NewMovieRecord validates and canonicalizes a record: the title is trimmed
// and required, non-finite ratings become 0, the overview is flattened to a
// single line and the cast slice is copied.
func NewMovieRecord(r MovieRecord) (MovieRecord, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return MovieRecord{}, ErrEmptyTitle
	}
	if math.IsNaN(r.Rating) || math.IsInf(r.Rating, 0) {
		r.Rating = 0
	}
	if r.Year < 0 {
		r.Year = 0
	}
	r.Overview = SingleLine(r.Overview)
	r.Cast = slices.Clone(r.Cast)
	return r, nil
}

// HasYear reports whether the release year is known.
func (r MovieRecord) HasYear() bool {
	return r.Year > 0
}

// GenreCount returns the number of comma-separated genre entries.
func (r MovieRecord) GenreCount() int {
	return len(strings.Split(r.Genre, ","))
}

// Clone returns a deep copy.
func (r MovieRecord) Clone() MovieRecord {
	r.Cast = slices.Clone(r.Cast)
	return r
}

// SingleLine replaces embedded line breaks with spaces and trims the result.
func SingleLine(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}

// FormatRating renders a rating the way the persisted dataset stores it:
// shortest decimal form with at least one fractional digit ("8.8", "7.0").
func FormatRating(rating float64) string {
	text := strconv.FormatFloat(rating, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// RoundRating rounds the exact binary value of rating to one decimal place,
// the way Python's round(x, 1) does, so 0.35 (stored just below) gives 0.3.
// Zero and non-finite values become 0.
func RoundRating(rating float64) float64 {
	if rating == 0 || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(rating, 'f', 1, 64), 64)
	if err != nil {
		return 0
	}
	return rounded
}
