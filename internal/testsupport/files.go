package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"cinephile/internal/catalog"
)

// WriteCSV writes header and rows to path as a CSV file, creating parent
// directories as needed.
func WriteCSV(t testing.TB, path string, header []string, rows ...[]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		t.Fatalf("write header %s: %v", path, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		t.Fatalf("write rows %s: %v", path, err)
	}
}

// WriteCatalog persists records in the dataset format at path.
func WriteCatalog(t testing.TB, path string, records []catalog.MovieRecord) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := catalog.WriteCSV(f, records); err != nil {
		t.Fatalf("write catalog %s: %v", path, err)
	}
}

// SampleMovies returns a small catalog covering several genres and a shared director.
func SampleMovies() []catalog.MovieRecord {
	return []catalog.MovieRecord{
		{Title: "Inception", Genre: "Action, Science Fiction, Adventure", Rating: 8.8, Year: 2010, Director: "Christopher Nolan",
			Cast: []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Ellen Page"}, Overview: "A thief who steals corporate secrets through dream-sharing technology."},
		{Title: "Interstellar", Genre: "Adventure, Drama, Science Fiction", Rating: 8.6, Year: 2014, Director: "Christopher Nolan",
			Cast: []string{"Matthew McConaughey", "Anne Hathaway"}, Overview: "Explorers travel through a wormhole in space."},
		{Title: "Heat", Genre: "Action, Crime, Drama, Thriller", Rating: 7.9, Year: 1995, Director: "Michael Mann",
			Cast: []string{"Al Pacino", "Robert De Niro"}, Overview: "A group of professional bank robbers."},
		{Title: "Paddington", Genre: "Comedy, Family", Rating: 7.2, Year: 2014, Director: "Paul King",
			Cast: []string{"Ben Whishaw"}, Overview: "A young bear travels to London."},
	}
}
