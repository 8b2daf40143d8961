// Package services defines shared utilities consumed by the generation
// pipeline and the external text-service integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, movie titles, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     cache miss from corrupt data or a failed generation with errors.Is.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across the pipeline.
package services
