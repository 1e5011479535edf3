// Package server exposes the query operations over a small read-only HTTP
// API. Every query response is a JSON envelope carrying the same formatted
// text the CLI prints, so clients render it verbatim.
//
// One server runs per log directory; Start takes an exclusive file lock and
// refuses to run when another instance holds it.
package server
