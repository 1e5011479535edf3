package query

import (
	"fmt"
	"strings"
	"time"

	"cinephile/internal/catalog"
	"cinephile/internal/metrics"
)

const (
	maxInfoCast     = 4
	maxOverviewRune = 500
)

// EmptyTitlePrompt is returned by Info when no title is given.
const EmptyTitlePrompt = "Tell me which film you'd like to know about."

// Info summarizes one movie: year, genre, director, cast, rating and an
// overview cut to 500 characters.
func (s *Service) Info(title string) string {
	started := time.Now()
	query := strings.TrimSpace(title)
	if query == "" {
		s.observe("info", metrics.OutcomeMiss, started)
		return EmptyTitlePrompt
	}
	record, name, ok := s.store.Resolve(query)
	if !ok {
		s.observe("info", metrics.OutcomeMiss, started)
		return fmt.Sprintf("Sorry, I couldn't find '%s' in my database — try another title or add it to movies_simple.csv.", title)
	}
	s.observe("info", metrics.OutcomeHit, started)

	genre := orDefault(record.Genre, "N/A")
	director := orDefault(record.Director, "Unknown")
	cast := "N/A"
	if len(record.Cast) > 0 {
		cast = strings.Join(record.Cast[:min(maxInfoCast, len(record.Cast))], ", ")
	}
	overview := orDefault(truncateRunes(record.Overview, maxOverviewRune), "No summary available.")

	return fmt.Sprintf("🎬 '%s' (%s) — %s\n"+
		"Directed by: %s\n"+
		"Main cast: %s\n"+
		"Rating: %s/10\n\n"+
		"Quick Summary: %s\n"+
		"Want trivia? Say 'tell me a trivia about %s' 🔮",
		name, yearText(record), genre,
		director,
		cast,
		catalog.FormatRating(record.Rating),
		overview,
		name,
	)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
