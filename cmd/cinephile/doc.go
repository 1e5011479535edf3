// Package main hosts the cinephile CLI entrypoint and command graph.
//
// The Cobra command tree covers the offline `prep` pipeline, the catalog
// queries (recommend, compare, info, trivia, search, list, moods), the HTTP
// API server and configuration scaffolding. Configuration, logging and
// catalog loading are resolved once per invocation in commandContext so
// subcommands stay declarative.
package main
