package logging

import (
	"context"
	"log/slog"

	"emojiplot/internal/services"
)

// Standard attribute keys.
const (
	FieldComponent     = "component"
	FieldSessionID     = "session_id"
	FieldTitle         = "title"
	FieldCacheKey      = "cache_key"
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering (e.g. artifact_cache_hit).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// WithContext tags logger with the session, title and correlation id carried
// by ctx. Attach it once per operation; slog does not dedupe repeated keys.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.SessionIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldSessionID, id))
	}
	if title, ok := services.TitleFromContext(ctx); ok {
		args = append(args, slog.String(FieldTitle, title))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldCorrelationID, rid))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
