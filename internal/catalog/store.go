package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"cinephile/internal/services"
)

type snapshot struct {
	order   []string
	records map[string]MovieRecord
}

func newSnapshot(records []MovieRecord) *snapshot {
	snap := &snapshot{
		order:   make([]string, 0, len(records)),
		records: make(map[string]MovieRecord, len(records)),
	}
	for _, record := range records {
		if _, dup := snap.records[record.Title]; dup {
			continue
		}
		snap.order = append(snap.order, record.Title)
		snap.records[record.Title] = record.Clone()
	}
	return snap
}

// Store is an in-memory, title-keyed catalog. The zero value is not usable;
// construct with New, FromRecords or Open.
type Store struct {
	current atomic.Pointer[snapshot]
	path    atomic.Value
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	s.current.Store(newSnapshot(nil))
	return s
}

// FromRecords builds a store from records already in memory. Later
// duplicates of a title are ignored.
func FromRecords(records []MovieRecord) *Store {
	s := &Store{}
	s.current.Store(newSnapshot(records))
	return s
}

// Open loads a dataset into a new store. The error reports why no catalog is
// available; a missing file is marked with services.ErrNotFound.
func Open(path string) (*Store, error) {
	s := New()
	if err := s.Load(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Load parses the dataset at path and swaps it in. On failure the previous
// mapping stays in place.
func (s *Store) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "catalog", "load", fmt.Sprintf("dataset %s not found; run `cinephile prep` first", path), err)
		}
		return services.Wrap(services.ErrExternal, "catalog", "load", "open dataset", err)
	}
	defer file.Close()

	records, err := ReadCSV(file)
	if err != nil {
		return services.Wrap(services.ErrValidation, "catalog", "load", fmt.Sprintf("parse dataset %s", path), err)
	}
	s.current.Store(newSnapshot(records))
	s.path.Store(path)
	return nil
}

// Path returns the location of the last successfully loaded dataset.
func (s *Store) Path() string {
	value, _ := s.path.Load().(string)
	return value
}

func (s *Store) snap() *snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	return newSnapshot(nil)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.snap().order)
}

// Lookup returns the record with exactly the given title.
func (s *Store) Lookup(title string) (MovieRecord, bool) {
	record, ok := s.snap().records[title]
	if !ok {
		return MovieRecord{}, false
	}
	return record.Clone(), true
}

// Resolve finds a record by exact title, falling back to the best fuzzy
// match. It returns the record and the catalog title it resolved to.
func (s *Store) Resolve(title string) (MovieRecord, string, bool) {
	if record, ok := s.Lookup(title); ok {
		return record, title, true
	}
	matches := s.FuzzyLookup(title, DefaultMaxResults, DefaultCutoff)
	if len(matches) == 0 {
		return MovieRecord{}, "", false
	}
	record, ok := s.Lookup(matches[0])
	return record, matches[0], ok
}

// Titles returns all titles in insertion order.
func (s *Store) Titles() []string {
	return append([]string(nil), s.snap().order...)
}

// Each calls fn for every record in insertion order until fn returns false.
func (s *Store) Each(fn func(MovieRecord) bool) {
	snap := s.snap()
	for _, title := range snap.order {
		if !fn(snap.records[title].Clone()) {
			return
		}
	}
}
