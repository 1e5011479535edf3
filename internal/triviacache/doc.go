// Package triviacache persists generated trivia answers in SQLite so repeated
// questions about the same title skip the text generation service.
//
// Entries are keyed by title and model and expire after a configurable TTL.
// Only successful answers are stored; failures are always retried upstream.
package triviacache
