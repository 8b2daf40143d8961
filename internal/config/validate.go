package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are checked
// separately by ValidateGeneration because read-only commands never call the
// text service.
func (c *Config) Validate() error {
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	return nil
}

// ValidateGeneration ensures the selected text service has credentials.
func (c *Config) ValidateGeneration() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return fmt.Errorf("gemini.api_key is required when llm.provider is %q. Set GEMINI_API_KEY or edit %s (create with 'emojiplot config init')", ProviderGemini, displayConfigPath())
		}
	default:
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'emojiplot config init')", displayConfigPath())
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Cache.Backend)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenRouter, ProviderGemini, c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.MinEmoji < 1 {
		return errors.New("generation.min_emoji must be at least 1")
	}
	if c.Generation.MinDistinctEmoji < 1 {
		return errors.New("generation.min_distinct_emoji must be at least 1")
	}
	if c.Generation.MinDistinctEmoji > c.Generation.MinEmoji {
		return errors.New("generation.min_distinct_emoji must not exceed generation.min_emoji")
	}
	if c.Generation.MinPlotBeats < 1 {
		return errors.New("generation.min_plot_beats must be at least 1")
	}
	return nil
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
