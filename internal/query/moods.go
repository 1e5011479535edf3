package query

import (
	"slices"
	"strings"
)

// moodGenres maps a mood to the genre tokens that satisfy it.
var moodGenres = map[string][]string{
	"romantic":      {"Romance", "Drama", "Comedy"},
	"funny":         {"Comedy", "Family"},
	"action":        {"Action", "Adventure", "Thriller"},
	"mind-bending":  {"Sci-Fi", "Mystery", "Thriller", "Fantasy"},
	"scary":         {"Horror", "Thriller", "Mystery"},
	"adventurous":   {"Adventure", "Action", "Fantasy"},
	"feel-good":     {"Comedy", "Family", "Romance"},
	"dramatic":      {"Drama"},
	"inspirational": {"Biography", "Drama", "Documentary"},
}

// Moods returns the known mood names, sorted.
func Moods() []string {
	names := make([]string, 0, len(moodGenres))
	for name := range moodGenres {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MoodGenres returns the genre tokens for a mood. Unknown moods yield nil.
func MoodGenres(mood string) []string {
	return slices.Clone(moodGenres[strings.ToLower(strings.TrimSpace(mood))])
}
