package generator

import (
	"context"
	"fmt"

	"emojiplot/internal/config"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
	"emojiplot/internal/services/gemini"
	"emojiplot/internal/services/llm"
)

// HealthChecker is implemented by text services that can verify their
// credentials cheaply.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewTextService builds the text service selected by cfg.LLM.Provider.
func NewTextService(ctx context.Context, cfg *config.Config) (TextService, error) {
	if err := cfg.ValidateGeneration(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "generator", "text service", "", err)
	}
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "generator", "gemini client", "", err)
		}
		return client, nil
	case config.ProviderOpenRouter, "":
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			RetryAttempts:  cfg.LLM.RetryAttempts,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "generator", "text service", fmt.Sprintf("unknown provider %q", cfg.LLM.Provider), nil)
	}
}

// OptionsFromConfig maps the [generation] section onto generator options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Rules: movieplot.Rules{
			MinEmoji:         cfg.Generation.MinEmoji,
			MinDistinctEmoji: cfg.Generation.MinDistinctEmoji,
		},
		MinPlotBeats: cfg.Generation.MinPlotBeats,
	}
}
