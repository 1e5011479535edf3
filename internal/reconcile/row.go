package reconcile

import "cinephile/internal/tabular"

type side int

const (
	sideMeta side = iota
	sideCredits
)

type columnRef struct {
	side  side
	index int
}

// Schema maps joined column names onto the metadata and credits tables.
type Schema struct {
	names []string
	refs  map[string]columnRef
}

func newSchema(meta, credits *tabular.Table) *Schema {
	creditsNames := make(map[string]struct{}, len(credits.Header))
	for _, name := range credits.Header {
		creditsNames[name] = struct{}{}
	}
	metaNames := make(map[string]struct{}, len(meta.Header))
	for _, name := range meta.Header {
		metaNames[name] = struct{}{}
	}

	s := &Schema{refs: make(map[string]columnRef, len(meta.Header)+len(credits.Header))}
	for i, name := range meta.Header {
		joined := name
		if _, clash := creditsNames[name]; clash {
			joined = name + "_meta"
		}
		s.add(joined, columnRef{side: sideMeta, index: i})
	}
	for i, name := range credits.Header {
		joined := name
		if _, clash := metaNames[name]; clash {
			joined = name + "_credits"
		}
		s.add(joined, columnRef{side: sideCredits, index: i})
	}
	return s
}

func (s *Schema) add(name string, ref columnRef) {
	if _, exists := s.refs[name]; exists {
		return
	}
	s.names = append(s.names, name)
	s.refs[name] = ref
}

// Row is one metadata row combined with zero or one credits row.
type Row struct {
	schema  *Schema
	meta    []string
	credits []string
}

// Get returns a joined column's value and whether it is present. Credits
// columns are absent on rows without a credits match.
func (r Row) Get(name string) (string, bool) {
	if r.schema == nil {
		return "", false
	}
	ref, ok := r.schema.refs[name]
	if !ok {
		return "", false
	}
	var cells []string
	if ref.side == sideMeta {
		cells = r.meta
	} else {
		cells = r.credits
	}
	if ref.index >= len(cells) {
		return "", false
	}
	cell := cells[ref.index]
	if tabular.IsMissing(cell) {
		return "", false
	}
	return cell, true
}

// Has reports whether the joined schema carries the column at all.
func (r Row) Has(name string) bool {
	if r.schema == nil {
		return false
	}
	_, ok := r.schema.refs[name]
	return ok
}

// Matched reports whether a credits row was joined.
func (r Row) Matched() bool {
	return r.credits != nil
}
