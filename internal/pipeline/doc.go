// Package pipeline runs the offline preparation step that turns the movie
// metadata and credits exports into the compact dataset the catalog loads.
//
// Both inputs are read concurrently, joined by the reconcile package, reduced
// to records by the extract package and written atomically under an exclusive
// lock beside the output file. Re-running over unchanged inputs produces a
// byte-identical dataset.
package pipeline
