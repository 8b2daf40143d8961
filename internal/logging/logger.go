package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"emojiplot/internal/config"
)

// Options describes where a logger writes and in which shape.
type Options struct {
	Level  string
	Format string
	// Console receives human-facing output. Nil means no console output.
	Console io.Writer
	// File is appended to when set. Its directory is created on demand.
	File string
	// AddSource forces caller locations. Debug level always includes them.
	AddSource bool
}

// New builds a logger writing to every sink named in opts. With no sinks the
// logger discards everything.
func New(opts Options) (*slog.Logger, error) {
	sink, err := openSink(opts.Console, opts.File)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		return NewNop(), nil
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.AddSource || level.Level() <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(sink, level, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(sink, level, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig builds the application logger. The log file under
// paths.log_dir always receives a copy; stderr is skipped when quiet is set,
// which is how the interactive screen keeps the terminal to itself.
func NewFromConfig(cfg *config.Config, quiet bool) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Console: os.Stderr})
	}
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.LogFile(),
	}
	if !quiet {
		opts.Console = os.Stderr
	}
	return New(opts)
}

func openSink(console io.Writer, path string) (io.Writer, error) {
	var sinks []io.Writer
	if console != nil {
		sinks = append(sinks, console)
	}
	if path = strings.TrimSpace(path); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		sinks = append(sinks, file)
	}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return io.MultiWriter(sinks...), nil
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
