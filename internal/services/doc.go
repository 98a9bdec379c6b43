// Package services defines shared utilities consumed by the executor and the
// external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, executor phases, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent terminal states (failed vs cancelled).
//
// Use these helpers when wiring new executor logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
