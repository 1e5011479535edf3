package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cinephile/internal/services"
)

func sampleRecords() []MovieRecord {
	return []MovieRecord{
		{Title: "Inception", Genre: "Action, Science Fiction", Rating: 8.8, Year: 2010, Director: "Christopher Nolan", Cast: []string{"Leonardo DiCaprio"}},
		{Title: "Interstellar", Genre: "Adventure, Drama", Rating: 8.6, Year: 2014, Director: "Christopher Nolan"},
		{Title: "Heat", Genre: "Crime", Rating: 7.9, Year: 1995, Director: "Michael Mann"},
	}
}

func writeDataset(t *testing.T, records []MovieRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies_simple.csv")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	defer file.Close()
	if err := WriteCSV(file, records); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestOpenAndLookup(t *testing.T) {
	store, err := Open(writeDataset(t, sampleRecords()))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", store.Len())
	}
	record, ok := store.Lookup("Heat")
	if !ok || record.Director != "Michael Mann" {
		t.Fatalf("unexpected lookup result: %+v %v", record, ok)
	}
	if _, ok := store.Lookup("heat"); ok {
		t.Fatal("exact lookup must be case-sensitive")
	}
	titles := store.Titles()
	if titles[0] != "Inception" || titles[2] != "Heat" {
		t.Fatalf("unexpected title order: %v", titles)
	}
}

func TestOpenMissingFileIsNotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("missing dataset must be fatal")
	}
}

func TestLoadFailureKeepsPreviousMapping(t *testing.T) {
	store, err := Open(writeDataset(t, sampleRecords()))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("title,genre,rating,year,director,cast,overview\nNew,,oops,,,,\n"), 0o644); err != nil {
		t.Fatalf("write bad dataset: %v", err)
	}
	if err := store.Load(bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected prior mapping intact, got %d records", store.Len())
	}
	if _, ok := store.Lookup("New"); ok {
		t.Fatal("partial state leaked into store")
	}
}

func TestLoadReplacesMapping(t *testing.T) {
	store, err := Open(writeDataset(t, sampleRecords()))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	next := writeDataset(t, []MovieRecord{{Title: "Alien", Rating: 8.1}})
	if err := store.Load(next); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if store.Len() != 1 || store.Path() != next {
		t.Fatalf("expected replaced mapping, got %d records from %q", store.Len(), store.Path())
	}
	if _, ok := store.Lookup("Heat"); ok {
		t.Fatal("old records must be gone after reload")
	}
}

func TestDuplicateTitlesKeepFirst(t *testing.T) {
	store := FromRecords([]MovieRecord{
		{Title: "Solaris", Year: 1972},
		{Title: "Solaris", Year: 2002},
	})
	record, _ := store.Lookup("Solaris")
	if store.Len() != 1 || record.Year != 1972 {
		t.Fatalf("expected first duplicate kept, got %+v", record)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	store := FromRecords(sampleRecords())
	record, _ := store.Lookup("Inception")
	record.Cast[0] = "mutated"
	again, _ := store.Lookup("Inception")
	if again.Cast[0] != "Leonardo DiCaprio" {
		t.Fatal("store records must be immutable")
	}
}

func TestFuzzyLookup(t *testing.T) {
	store := FromRecords(sampleRecords())
	got := store.FuzzyLookup("Inceptoin", DefaultMaxResults, 0.6)
	if len(got) != 1 || got[0] != "Inception" {
		t.Fatalf("unexpected fuzzy result: %v", got)
	}
	if got := store.FuzzyLookup("zzzzzz", 5, 0.6); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
	if got := store.FuzzyLookup("inception", 5, 0.95); len(got) != 0 {
		t.Fatalf("fuzzy lookup must be case-sensitive, got %v", got)
	}
}

func TestFuzzyLookupEmptyCatalog(t *testing.T) {
	got := New().FuzzyLookup("Inception", 5, 0.6)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestFuzzyLookupTiesKeepInsertionOrder(t *testing.T) {
	store := FromRecords([]MovieRecord{{Title: "Cab"}, {Title: "Cat"}, {Title: "Car"}, {Title: "Cap"}})
	got := store.FuzzyLookup("Ca", 3, 0.6)
	want := []string{"Cab", "Cat", "Car"}
	if len(got) != len(want) {
		t.Fatalf("unexpected result: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveFallsBackToFuzzy(t *testing.T) {
	store := FromRecords(sampleRecords())
	record, title, ok := store.Resolve("Interstelar")
	if !ok || title != "Interstellar" || record.Year != 2014 {
		t.Fatalf("unexpected resolve result: %q %+v %v", title, record, ok)
	}
	if _, _, ok := store.Resolve("Zardoz"); ok {
		t.Fatal("expected miss")
	}
}

func TestConcurrentReads(t *testing.T) {
	store := FromRecords(sampleRecords())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Lookup("Heat")
				store.FuzzyLookup("Hat", 5, 0.6)
			}
		}()
	}
	wg.Wait()
}
