package reconcile

import (
	"errors"

	"cinephile/internal/normalize"
	"cinephile/internal/tabular"
)

// MissingThreshold is the absent-fraction above which the title join is tried.
const MissingThreshold = 0.30

// Strategy names the join key that produced a Result.
type Strategy string

const (
	StrategyID    Strategy = "id"
	StrategyTitle Strategy = "title"
)

// Result is the chosen join plus the measurements that selected it.
type Result struct {
	Strategy       Strategy
	Representative string
	Rows           []Row
	Schema         *Schema
	// IDAbsentFraction is the share of identifier-joined rows lacking the
	// representative credits field.
	IDAbsentFraction float64
	// TitleAbsentFraction is only meaningful when TitleAttempted is set.
	TitleAbsentFraction float64
	TitleAttempted      bool
}

// AbsentFraction returns the absent-fraction of the chosen join.
func (r *Result) AbsentFraction() float64 {
	if r.Strategy == StrategyTitle {
		return r.TitleAbsentFraction
	}
	return r.IDAbsentFraction
}

// Reconcile joins metadata rows to credits rows.
func Reconcile(meta, credits *tabular.Table) (*Result, error) {
	if meta == nil || credits == nil {
		return nil, errors.New("reconcile: both tables are required")
	}

	schema := newSchema(meta, credits)
	repIndex, representative := representativeColumn(credits)

	idRows := leftJoin(schema, meta, credits, identifierKeys(meta), identifierKeys(credits))
	result := &Result{
		Strategy:         StrategyID,
		Representative:   representative,
		Rows:             idRows,
		Schema:           schema,
		IDAbsentFraction: absentFraction(idRows, repIndex),
	}
	if repIndex < 0 || result.IDAbsentFraction <= MissingThreshold {
		return result, nil
	}

	titleRows := leftJoin(schema, meta, credits, titleKeys(meta, "title"), titleKeys(credits, "title", "movie_name"))
	result.TitleAttempted = true
	result.TitleAbsentFraction = absentFraction(titleRows, repIndex)
	if result.TitleAbsentFraction < result.IDAbsentFraction {
		result.Strategy = StrategyTitle
		result.Rows = titleRows
	}
	return result, nil
}

func representativeColumn(credits *tabular.Table) (int, string) {
	if idx, ok := credits.Column("crew"); ok {
		return idx, "crew"
	}
	if len(credits.Header) == 0 {
		return -1, ""
	}
	return 0, credits.Header[0]
}

func identifierKeys(table *tabular.Table) []string {
	column, ok := normalize.IDColumn(table.Header)
	if !ok {
		return normalize.Positional(table.Len())
	}
	values, present, _ := table.ColumnValues(column)
	return normalize.IDs(values, present)
}

func titleKeys(table *tabular.Table, candidates ...string) []string {
	keys := make([]string, table.Len())
	for _, column := range candidates {
		values, present, ok := table.ColumnValues(column)
		if !ok {
			continue
		}
		for i, value := range values {
			if present[i] {
				keys[i] = normalize.TitleKey(value)
			}
		}
		return keys
	}
	return keys
}

func joinable(key string) bool {
	return key != "" && key != normalize.Absent
}

func leftJoin(schema *Schema, meta, credits *tabular.Table, metaKeys, creditKeys []string) []Row {
	byKey := make(map[string][]int, len(creditKeys))
	for i, key := range creditKeys {
		if joinable(key) {
			byKey[key] = append(byKey[key], i)
		}
	}

	rows := make([]Row, 0, meta.Len())
	for i, metaRow := range meta.Rows {
		var matches []int
		if joinable(metaKeys[i]) {
			matches = byKey[metaKeys[i]]
		}
		if len(matches) == 0 {
			rows = append(rows, Row{schema: schema, meta: metaRow})
			continue
		}
		for _, j := range matches {
			rows = append(rows, Row{schema: schema, meta: metaRow, credits: credits.Rows[j]})
		}
	}
	return rows
}

func absentFraction(rows []Row, repIndex int) float64 {
	if len(rows) == 0 || repIndex < 0 {
		return 0
	}
	var absent int
	for _, row := range rows {
		if row.credits == nil || tabular.IsMissing(row.credits[repIndex]) {
			absent++
		}
	}
	return float64(absent) / float64(len(rows))
}
