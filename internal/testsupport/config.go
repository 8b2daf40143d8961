package testsupport

import (
	"path/filepath"
	"testing"

	"emojiplot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LLM.APIKey = "test"
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Cache.SQLitePath = filepath.Join(base, "cache", "artifacts.db")
	cfgVal.Cache.LockRetryMillis = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the artifact store backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
	}
}

// WithRegenerateCorrupt toggles regeneration of unreadable artifacts.
func WithRegenerateCorrupt(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.RegenerateCorrupt = enabled
	}
}

// WithoutGenerationLock disables the cross-process generation lock.
func WithoutGenerationLock() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.LockGeneration = false
	}
}

// WithEmojiRules overrides the emoji minimums enforced on generated plots.
func WithEmojiRules(minEmoji, minDistinct int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.MinEmoji = minEmoji
		b.cfg.Generation.MinDistinctEmoji = minDistinct
	}
}

// BaseDir returns the per-test temp root backing cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
