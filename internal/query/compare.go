package query

import (
	"fmt"
	"strings"
	"time"

	"cinephile/internal/catalog"
	"cinephile/internal/metrics"
)

// Compare contrasts two movies without declaring a winner. Titles resolve by
// exact match first, then by the closest fuzzy match.
func (s *Service) Compare(titleA, titleB string) string {
	started := time.Now()
	recordA, nameA, okA := s.store.Resolve(titleA)
	recordB, nameB, okB := s.store.Resolve(titleB)
	if !okA || !okB {
		s.observe("compare", metrics.OutcomeMiss, started)
		missing := titleA
		if okA {
			missing = titleB
		}
		return fmt.Sprintf("⚠️ I couldn't find *%s* in my dataset — maybe try a slightly different title?", missing)
	}
	s.observe("compare", metrics.OutcomeHit, started)

	lines := []string{
		"🎬 Which to watch? A cheeky comparison:",
		compareLine(nameA, recordA),
		compareLine(nameB, recordB),
		"",
	}
	if recordA.Rating != recordB.Rating {
		higher := nameB
		if recordA.Rating > recordB.Rating {
			higher = nameA
		}
		lines = append(lines, fmt.Sprintf("📊 By ratings, %s edges ahead — but does that match your vibe? Depends on your mood! 😉", higher))
	} else {
		lines = append(lines, "⭐ Both score similarly — taste decides, not me!")
	}
	if recordA.Director != "" && recordA.Director == recordB.Director {
		lines = append(lines, fmt.Sprintf("Fun fact: both are by %s — double signature style!", recordA.Director))
	}
	lines = append(lines, "", "Want a tie-breaker? Tell me your mood and I'll pick!")
	return strings.Join(lines, "\n")
}

func compareLine(title string, record catalog.MovieRecord) string {
	return fmt.Sprintf("• %s — %s • %s/10 • dir: %s", title, record.Genre, catalog.FormatRating(record.Rating), record.Director)
}
