package plotcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"

	"emojiplot/internal/artifactstore"
	"emojiplot/internal/config"
	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
)

const defaultLockRetry = 250 * time.Millisecond

// Generator produces a fresh artifact for a title.
type Generator interface {
	Generate(ctx context.Context, title string) (movieplot.Artifact, error)
}

// Options control locking and corrupt-entry handling.
type Options struct {
	// LockDir holds per-key lock files. Empty disables cross-process locking.
	LockDir           string
	LockRetry         time.Duration
	RegenerateCorrupt bool
}

// OptionsFromConfig maps the [cache] section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		LockRetry:         time.Duration(cfg.Cache.LockRetryMillis) * time.Millisecond,
		RegenerateCorrupt: cfg.Cache.RegenerateCorrupt,
	}
	if cfg.Cache.LockGeneration {
		opts.LockDir = cfg.LockDir()
	}
	return opts
}

// CachingGenerator is a read-through, write-through cache in front of a Generator.
type CachingGenerator struct {
	store  artifactstore.Store
	gen    Generator
	opts   Options
	group  singleflight.Group
	logger *slog.Logger
}

// New constructs a CachingGenerator over store and gen.
func New(store artifactstore.Store, gen Generator, opts Options, logger *slog.Logger) *CachingGenerator {
	if opts.LockRetry <= 0 {
		opts.LockRetry = defaultLockRetry
	}
	return &CachingGenerator{
		store:  store,
		gen:    gen,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "plotcache"),
	}
}

// Store exposes the backing artifact store.
func (c *CachingGenerator) Store() artifactstore.Store {
	return c.store
}

// GetOrGenerate returns the artifact stored under key, generating and saving
// one for title on a miss. Shared work is detached from ctx so one caller
// giving up never fails the others; the caller itself stops waiting when ctx
// is done.
func (c *CachingGenerator) GetOrGenerate(ctx context.Context, key, title string) (movieplot.Artifact, error) {
	if strings.TrimSpace(key) == "" {
		return movieplot.Artifact{}, services.Wrap(services.ErrValidation, "plotcache", "get", "key is empty", nil)
	}
	work := context.WithoutCancel(services.WithTitle(ctx, title))
	ch := c.group.DoChan(key, func() (any, error) {
		return c.resolve(work, key, title)
	})
	select {
	case <-ctx.Done():
		return movieplot.Artifact{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return movieplot.Artifact{}, res.Err
		}
		if res.Shared {
			c.logger.Debug("shared in-flight generation", logging.String(logging.FieldCacheKey, key))
		}
		return res.Val.(movieplot.Artifact), nil
	}
}

// CachedKeys reports which titles already have a stored artifact. A title
// whose key the store rejects counts as uncached.
func (c *CachingGenerator) CachedKeys(ctx context.Context, titles []string) (map[string]struct{}, error) {
	cached := make(map[string]struct{})
	for _, title := range titles {
		key := movieplot.KeyFor(title)
		exists, err := c.store.Exists(ctx, key)
		if errors.Is(err, services.ErrValidation) {
			logging.WarnWithContext(c.logger, "title cannot be cached", "cache_key_rejected",
				logging.String(logging.FieldTitle, title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "title is treated as uncached"))
			continue
		}
		if err != nil {
			return nil, err
		}
		if exists {
			cached[key] = struct{}{}
		}
	}
	return cached, nil
}

func (c *CachingGenerator) resolve(ctx context.Context, key, title string) (movieplot.Artifact, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldCacheKey, key))

	artifact, hit, err := c.lookup(ctx, logger, key)
	if err != nil || hit {
		return artifact, err
	}

	unlock, err := c.lock(ctx, key)
	if err != nil {
		return movieplot.Artifact{}, err
	}
	defer unlock()
	if c.opts.LockDir != "" {
		// Another process may have finished while we waited on the lock.
		artifact, hit, err = c.lookup(ctx, logger, key)
		if err != nil || hit {
			return artifact, err
		}
	}

	logger.Info("artifact cache miss; generating", logging.String(logging.FieldEventType, "artifact_cache_miss"))
	generated, err := c.gen.Generate(ctx, title)
	if err != nil {
		return movieplot.Artifact{}, err
	}
	if err := c.store.Save(ctx, key, generated); err != nil {
		return movieplot.Artifact{}, err
	}
	logger.Info("artifact cached", logging.String(logging.FieldEventType, "artifact_cached"))
	return generated, nil
}

// lookup loads key when present. A missing entry, or a corrupt one under the
// regenerate policy, reports hit=false with no error.
func (c *CachingGenerator) lookup(ctx context.Context, logger *slog.Logger, key string) (movieplot.Artifact, bool, error) {
	exists, err := c.store.Exists(ctx, key)
	if err != nil || !exists {
		return movieplot.Artifact{}, false, err
	}
	artifact, err := c.store.Load(ctx, key)
	switch {
	case err == nil:
		logger.Debug("artifact cache hit", logging.String(logging.FieldEventType, "artifact_cache_hit"))
		return artifact, true, nil
	case errors.Is(err, services.ErrNotFound):
		return movieplot.Artifact{}, false, nil
	case errors.Is(err, services.ErrCorruptData) && c.opts.RegenerateCorrupt:
		logging.WarnWithContext(logger, "stored artifact unreadable; regenerating", "artifact_corrupt_regenerated",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the artifact is regenerated and overwritten"),
			logging.String(logging.FieldErrorHint, "inspect the cache entry if this repeats"))
		return movieplot.Artifact{}, false, nil
	default:
		return movieplot.Artifact{}, false, err
	}
}

func (c *CachingGenerator) lock(ctx context.Context, key string) (func(), error) {
	if c.opts.LockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(c.opts.LockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fileLock := flock.New(filepath.Join(c.opts.LockDir, movieplot.FileStem(key)+".lock"))
	locked, err := fileLock.TryLockContext(ctx, c.opts.LockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire generation lock for %q: %w", key, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire generation lock for %q: not acquired", key)
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			logging.WarnWithContext(c.logger, "failed to release generation lock", "generation_lock_release_failed",
				logging.String(logging.FieldCacheKey, key),
				logging.Error(err),
				logging.String(logging.FieldImpact, "other processes may wait for this key until exit"))
		}
	}, nil
}
