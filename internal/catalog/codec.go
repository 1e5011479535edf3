package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header is the persisted dataset column set, in write order.
var Header = []string{"title", "genre", "rating", "year", "director", "cast", "overview"}

// CastSeparator joins cast names inside the cast cell.
const CastSeparator = "|"

// WriteCSV encodes records in the persisted dataset format.
func WriteCSV(w io.Writer, records []MovieRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		year := ""
		if record.HasYear() {
			year = strconv.Itoa(record.Year)
		}
		row := []string{
			record.Title,
			record.Genre,
			FormatRating(record.Rating),
			year,
			record.Director,
			strings.Join(record.Cast, CastSeparator),
			record.Overview,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write %q: %w", record.Title, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV decodes the persisted dataset. Column order is free but every
// dataset column must be present. Any malformed row fails the whole read.
func ReadCSV(r io.Reader) ([]MovieRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, name := range Header {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("dataset header missing column %q", name)
		}
	}

	var records []MovieRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		cell := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return row[idx]
		}
		record, err := decodeRecord(cell)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(cell func(string) string) (MovieRecord, error) {
	var rating float64
	if text := strings.TrimSpace(cell("rating")); text != "" {
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return MovieRecord{}, fmt.Errorf("rating %q: %w", text, err)
		}
		rating = parsed
	}
	var year int
	if text := strings.TrimSpace(cell("year")); text != "" {
		parsed, err := strconv.Atoi(text)
		if err != nil {
			return MovieRecord{}, fmt.Errorf("year %q: %w", text, err)
		}
		year = parsed
	}
	var cast []string
	if text := cell("cast"); text != "" {
		cast = strings.Split(text, CastSeparator)
	}
	return NewMovieRecord(MovieRecord{
		Title:    cell("title"),
		Genre:    cell("genre"),
		Rating:   rating,
		Year:     year,
		Director: cell("director"),
		Cast:     cast,
		Overview: cell("overview"),
	})
}
