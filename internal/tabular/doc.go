// Package tabular reads raw CSV inputs into an ordered, column-addressable
// table.
//
// Cells are kept as text. A cell is considered missing when it is blank or
// spells one of the conventional not-available markers (NaN, NULL, N/A, ...),
// matching how spreadsheet exports and dataframe tools encode absent values.
// Duplicate header names are disambiguated with a numeric suffix so every
// column stays addressable.
package tabular
