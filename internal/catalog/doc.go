// Package catalog holds the flat movie dataset: the MovieRecord entity, the
// persisted CSV codec shared by the prep pipeline and the query process, and
// the in-memory title-keyed Store.
//
// A Store is loaded once and then read concurrently. Load replaces the whole
// mapping or nothing: a file that fails to parse leaves the previous mapping
// untouched. Records handed out by the store are copies.
package catalog
