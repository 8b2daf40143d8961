package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"emojiplot/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	for _, key := range []string{"OPENROUTER_API_KEY", "EMOJIPLOT_LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(tempHome)
	return tempHome
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(tempHome, ".cache", "emojiplot")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if cfg.ArtifactDir() != filepath.Join(wantCache, "cache") {
		t.Fatalf("unexpected artifact dir: %q", cfg.ArtifactDir())
	}
	if cfg.Cache.SQLitePath != filepath.Join(wantCache, "artifacts.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Cache.SQLitePath)
	}
	if cfg.Cache.Backend != config.BackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Cache.Backend)
	}
	if !cfg.Cache.LockGeneration {
		t.Fatal("expected generation locking enabled by default")
	}
	if cfg.Cache.RegenerateCorrupt {
		t.Fatal("expected corrupt entries to surface by default")
	}
	if cfg.LLM.Provider != config.ProviderOpenRouter {
		t.Fatalf("unexpected provider: %q", cfg.LLM.Provider)
	}
	if cfg.Generation.MinEmoji != 30 || cfg.Generation.MinDistinctEmoji != 5 || cfg.Generation.MinPlotBeats != 12 {
		t.Fatalf("unexpected generation minimums: %+v", cfg.Generation)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.ValidateGeneration(); err == nil {
		t.Fatal("expected missing api key to fail generation validation")
	}
}

func TestLoadUsesEnvAPIKeys(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "  router-key ")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "router-key" {
		t.Fatalf("expected trimmed OpenRouter key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Gemini.APIKey != "gemini-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if err := cfg.ValidateGeneration(); err != nil {
		t.Fatalf("ValidateGeneration returned error: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	home := isolateEnv(t)
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = "~/plots"
	cfgVal.Cache.Backend = "SQLite"
	cfgVal.Cache.SQLitePath = ""
	cfgVal.LLM.Provider = "gemini"
	cfgVal.Gemini.APIKey = "abc"
	cfgVal.Logging.Format = "JSON"

	data, err := toml.Marshal(cfgVal)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(home, "custom.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to exist, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.CacheDir != filepath.Join(home, "plots") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Cache.Backend != config.BackendSQLite {
		t.Fatalf("expected normalized sqlite backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.SQLitePath != filepath.Join(home, "plots", "artifacts.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Cache.SQLitePath)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	if err := cfg.ValidateGeneration(); err != nil {
		t.Fatalf("ValidateGeneration returned error: %v", err)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Cache.Backend = "redis" }, "cache.backend"},
		{"provider", func(c *config.Config) { c.LLM.Provider = "mystery" }, "llm.provider"},
		{"min emoji", func(c *config.Config) { c.Generation.MinEmoji = -1 }, "generation.min_emoji"},
		{"distinct exceeds total", func(c *config.Config) {
			c.Generation.MinEmoji = 3
			c.Generation.MinDistinctEmoji = 4
		}, "min_distinct_emoji"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "sample", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Cache.Backend != config.BackendFile {
		t.Fatalf("unexpected sample backend: %q", cfg.Cache.Backend)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache-root")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.ArtifactDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}
