// Package reconcile joins the movie metadata table with the credits table.
//
// Reconcile first performs a left outer join on normalized identifiers. When
// more than 30% of the joined rows lack the representative credits field it
// retries on a case-insensitive title key and keeps whichever join leaves
// fewer gaps, favouring the identifier join on ties. Every metadata row is
// kept in source order; a metadata row matching several credits rows yields
// one joined row per match.
//
// Column names shared by both tables (other than the join key) are exposed
// with "_meta" and "_credits" suffixes on the joined rows.
package reconcile
