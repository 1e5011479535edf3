package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cinephile/internal/catalog"
	"cinephile/internal/metrics"
)

const (
	ratingFloor     = 7.0
	multiGenreBonus = 1.5
	jitterRange     = 0.5
	topTierScore    = 8.0
	topTierLimit    = 15
	fallbackLimit   = 10
	maxPicks        = 3
)

// NoMatchMessage is returned when no record passes the recommendation filters.
const NoMatchMessage = "Hmm, I couldn't find a match — want to try a different mood or genre? 🎬"

type candidate struct {
	record catalog.MovieRecord
	score  float64
}

// Recommend picks up to three well-rated movies matching an optional genre
// substring and an optional mood. Empty strings mean "no constraint"; an
// unknown mood also imposes none. The 7.0 rating floor is waived for records
// whose genre contains the genre query, which includes every record when no
// genre is given.
func (s *Service) Recommend(genre, mood string) string {
	started := time.Now()
	picks := s.recommend(genre, mood)
	if len(picks) == 0 {
		s.observe("recommend", metrics.OutcomeMiss, started)
		return NoMatchMessage
	}
	s.observe("recommend", metrics.OutcomeHit, started)

	lines := make([]string, 0, len(picks)+2)
	lines = append(lines, "Here are some fresh picks:")
	for _, pick := range picks {
		lines = append(lines, formatPick(pick))
	}
	lines = append(lines, "Enjoy the show! 🍿")
	return strings.Join(lines, "\n")
}

// RecommendRecords runs the recommendation algorithm and returns the picked
// records instead of formatted text.
func (s *Service) RecommendRecords(genre, mood string) []catalog.MovieRecord {
	return s.recommend(genre, mood)
}

func (s *Service) recommend(genre, mood string) []catalog.MovieRecord {
	genreQuery := strings.ToLower(strings.TrimSpace(genre))
	moodTokens := MoodGenres(mood)

	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	var candidates []candidate
	s.store.Each(func(record catalog.MovieRecord) bool {
		genres := strings.ToLower(record.Genre)
		genreMatch := strings.Contains(genres, genreQuery)
		if record.Rating < ratingFloor && !genreMatch {
			return true
		}
		if !genreMatch || !matchesMood(genres, moodTokens) {
			return true
		}
		score := record.Rating + s.rng.Float64()*jitterRange
		if record.GenreCount() > 1 {
			score += multiGenreBonus
		}
		candidates = append(candidates, candidate{record: record, score: score})
		return true
	})
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	pool := topTier(candidates)

	n := min(maxPicks, len(pool))
	picks := make([]catalog.MovieRecord, 0, n)
	for range n {
		idx := s.rng.IntN(len(pool))
		picks = append(picks, pool[idx].record)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return picks
}

func matchesMood(genres string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, token := range tokens {
		if strings.Contains(genres, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

func topTier(sorted []candidate) []candidate {
	var pool []candidate
	for _, c := range sorted {
		if c.score < topTierScore {
			break
		}
		pool = append(pool, c)
		if len(pool) == topTierLimit {
			break
		}
	}
	if len(pool) > 0 {
		return pool
	}
	return append([]candidate(nil), sorted[:min(fallbackLimit, len(sorted))]...)
}

func formatPick(record catalog.MovieRecord) string {
	director := record.Director
	if director == "" {
		director = "unknown"
	}
	return fmt.Sprintf("🎬 %s directed by %s ,(%s) | Rating: %s/10",
		stripQuotes(record.Title), director, yearText(record), catalog.FormatRating(record.Rating))
}

func stripQuotes(title string) string {
	title = strings.TrimSpace(title)
	if len(title) >= 2 && isQuote(title[0]) && isQuote(title[len(title)-1]) {
		return title[1 : len(title)-1]
	}
	return title
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

func yearText(record catalog.MovieRecord) string {
	if !record.HasYear() {
		return "?"
	}
	return fmt.Sprint(record.Year)
}
