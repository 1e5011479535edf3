// Package query implements the catalog operations exposed to callers:
// Recommend, Compare, Info and Trivia.
//
// Every operation returns a single formatted string. Lookup misses and
// collaborator failures are folded into that string rather than returned as
// errors, so the CLI and HTTP API can relay results verbatim.
//
// Service holds an explicit catalog.Store and an injected random source.
// Seeding the source makes recommendations reproducible; the source is
// guarded by a mutex so a Service is safe for concurrent use.
package query
