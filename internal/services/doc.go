// Package services defines shared utilities consumed by the offline pipeline,
// the query layer, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp operation names and correlation identifiers
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can tell fatal
//     startup failures (missing inputs, bad configuration) apart from
//     recoverable ones.
//
// Use these helpers when wiring new components so operational behaviour
// (error classification, observability) stays uniform.
package services
