package artifactstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"emojiplot/internal/config"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
)

// Store is durable key to artifact persistence.
type Store interface {
	// Exists reports whether an artifact is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Load returns the artifact for key. Absent keys fail with
	// services.ErrNotFound, unparsable payloads with services.ErrCorruptData.
	Load(ctx context.Context, key string) (movieplot.Artifact, error)
	// Save writes artifact under key, replacing any previous payload.
	Save(ctx context.Context, key string, artifact movieplot.Artifact) error
	// List enumerates stored keys ordered by key.
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Entry describes one stored artifact without decoding it.
type Entry struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Open constructs the backend selected by cfg.Cache.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "artifactstore", "open", "config is required", nil)
	}
	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		return OpenSQLite(cfg.Cache.SQLitePath, logger)
	case config.BackendFile, "":
		return NewFileStore(cfg.ArtifactDir(), logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "artifactstore", "open", fmt.Sprintf("unknown backend %q", cfg.Cache.Backend), nil)
	}
}

func validateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return services.Wrap(services.ErrValidation, "artifactstore", "key", "key is empty", nil)
	case strings.ContainsRune(key, 0):
		return services.Wrap(services.ErrValidation, "artifactstore", "key", fmt.Sprintf("key %q contains NUL", key), nil)
	}
	return nil
}
