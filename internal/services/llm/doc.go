// Package llm provides an OpenAI-compatible chat client used to generate
// movie trivia.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Generate: send a system directive and user prompt with model,
// max_tokens and temperature, receive the reply text.
//
// # Retry Behaviour
//
// One attempt is made by default. When more are configured the client
// retries on HTTP 408/429/5xx errors, empty replies and network timeouts with
// exponential backoff (base 1s, max 10s). Context cancellation aborts retries
// immediately.
//
// # Circuit Breaker
//
// Calls run through a sony/gobreaker circuit breaker. After five consecutive
// upstream failures the breaker opens for 30 seconds and Generate fails fast
// with services.ErrTransient. State changes are published as Prometheus
// metrics.
//
// # Errors
//
// A missing API key is reported as services.ErrConfiguration before any
// request is made. Callers that must never fail (trivia) convert errors to
// text.
package llm
