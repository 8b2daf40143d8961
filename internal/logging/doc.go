// Package logging builds the slog loggers every emojiplot component writes to.
//
// Two formats are supported: a console format that lifts the component and
// session into a readable prefix, and JSON for machine consumption. Output
// goes to stderr, the log file under paths.log_dir, or both. WithContext tags
// lines with the session and title carried by a context, and WarnWithContext
// enforces the event_type, error_hint and impact fields on warnings.
package logging
