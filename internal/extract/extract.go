package extract

import (
	"strconv"
	"strings"

	"cinephile/internal/catalog"
	"cinephile/internal/reconcile"
)

const maxCast = 3

// Field source columns, in preference order. Suffixed names appear when both
// input tables carried the column.
var (
	titleColumns    = []string{"title", "title_meta", "original_title"}
	genreColumns    = []string{"genres", "genres_meta"}
	dateColumns     = []string{"release_date", "release_date_meta", "release_date_credits"}
	castColumns     = []string{"cast", "cast_credits"}
	crewColumns     = []string{"crew", "crew_credits"}
	overviewColumns = []string{"overview", "overview_meta"}
)

// Stats counts per-field fallbacks across a batch of rows.
type Stats struct {
	Rows            int
	Extracted       int
	SkippedNoTitle  int
	Duplicates      int
	GenreFallbacks  int
	RatingFallbacks int
	YearFallbacks   int
	CastFallbacks   int
	CrewFallbacks   int
}

// Extract produces the record for one joined row, or false when the row has
// no usable title.
func Extract(row reconcile.Row) (catalog.MovieRecord, bool) {
	return extract(row, &Stats{})
}

// ExtractAll extracts every row and drops later records whose title was
// already seen, preserving source order.
func ExtractAll(rows []reconcile.Row) ([]catalog.MovieRecord, Stats) {
	var stats Stats
	seen := make(map[string]struct{}, len(rows))
	records := make([]catalog.MovieRecord, 0, len(rows))
	for _, row := range rows {
		stats.Rows++
		record, ok := extract(row, &stats)
		if !ok {
			stats.SkippedNoTitle++
			continue
		}
		if _, dup := seen[record.Title]; dup {
			stats.Duplicates++
			continue
		}
		seen[record.Title] = struct{}{}
		records = append(records, record)
	}
	stats.Extracted = len(records)
	return records, stats
}

func extract(row reconcile.Row, stats *Stats) (catalog.MovieRecord, bool) {
	title, _ := first(row, titleColumns)
	director, crewOK := directorFromCrew(row)
	if !crewOK {
		stats.CrewFallbacks++
	}
	if director == "" {
		director, _ = row.Get("director")
	}
	overview, _ := first(row, overviewColumns)

	genre, genreOK := parseGenres(row)
	if !genreOK {
		stats.GenreFallbacks++
	}
	rating, ratingOK := parseRating(row)
	if !ratingOK {
		stats.RatingFallbacks++
	}
	year, yearOK := parseYear(row)
	if !yearOK {
		stats.YearFallbacks++
	}
	cast, castOK := castNames(row)
	if !castOK {
		stats.CastFallbacks++
	}

	record, err := catalog.NewMovieRecord(catalog.MovieRecord{
		Title:    title,
		Genre:    genre,
		Rating:   rating,
		Year:     year,
		Director: strings.TrimSpace(director),
		Cast:     cast,
		Overview: overview,
	})
	if err != nil {
		return catalog.MovieRecord{}, false
	}
	return record, true
}

func first(row reconcile.Row, columns []string) (string, bool) {
	for _, column := range columns {
		if value, ok := row.Get(column); ok {
			return value, true
		}
	}
	return "", false
}

// parsedList parses the first present column of a serialized list field. The
// second result is false only when a present value failed to parse.
func parsedList(row reconcile.Row, columns []string) (any, bool, bool) {
	raw, present := first(row, columns)
	if !present {
		return nil, false, true
	}
	value, err := parseLiteral(raw)
	if err != nil {
		return nil, true, false
	}
	return value, true, true
}

func parseGenres(row reconcile.Row) (string, bool) {
	raw, present := first(row, genreColumns)
	if !present {
		return "", true
	}
	value, err := parseLiteral(raw)
	if err != nil {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "(") {
			return "", false
		}
		return trimmed, true
	}
	switch v := value.(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if name := entryName(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ", "), true
	case map[string]any:
		return "", false
	default:
		return literalText(v), true
	}
}

func entryName(item any) string {
	entry, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	return strings.TrimSpace(literalText(entry["name"]))
}

func parseRating(row reconcile.Row) (float64, bool) {
	raw, present := row.Get("vote_average")
	if !present {
		raw, present = row.Get("rating")
	}
	if !present {
		return 0, true
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return catalog.RoundRating(value), true
}

func parseYear(row reconcile.Row) (int, bool) {
	raw, present := first(row, dateColumns)
	if !present {
		return 0, true
	}
	prefix := []rune(raw)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(prefix)))
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func castNames(row reconcile.Row) ([]string, bool) {
	value, present, ok := parsedList(row, castColumns)
	if !present || !ok {
		return nil, ok
	}
	list, isList := value.([]any)
	if !isList {
		return nil, false
	}
	if len(list) > maxCast {
		list = list[:maxCast]
	}
	names := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		default:
			if name := entryName(v); name != "" {
				names = append(names, name)
			}
		}
	}
	return names, true
}

// directorFromCrew returns the name of the first crew entry whose job is
// exactly "Director".
func directorFromCrew(row reconcile.Row) (string, bool) {
	value, present, ok := parsedList(row, crewColumns)
	if !present || !ok {
		return "", ok
	}
	list, isList := value.([]any)
	if !isList {
		return "", false
	}
	for _, item := range list {
		entry, isDict := item.(map[string]any)
		if !isDict {
			continue
		}
		if job, _ := entry["job"].(string); job == "Director" {
			return strings.TrimSpace(literalText(entry["name"])), true
		}
	}
	return "", true
}
