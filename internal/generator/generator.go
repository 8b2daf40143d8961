package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services/llm"
)

// TextService is the boundary to a language model.
type TextService interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options tune the minimums requested from and enforced on the model.
type Options struct {
	Rules        movieplot.Rules
	MinPlotBeats int
}

// Generator produces artifacts from titles.
type Generator struct {
	service TextService
	opts    Options
	logger  *slog.Logger
}

// New constructs a Generator. Zero option values fall back to the defaults.
func New(service TextService, opts Options, logger *slog.Logger) *Generator {
	if opts.Rules.MinEmoji <= 0 {
		opts.Rules.MinEmoji = movieplot.DefaultRules.MinEmoji
	}
	if opts.Rules.MinDistinctEmoji <= 0 {
		opts.Rules.MinDistinctEmoji = movieplot.DefaultRules.MinDistinctEmoji
	}
	if opts.MinPlotBeats <= 0 {
		opts.MinPlotBeats = 12
	}
	return &Generator{
		service: service,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "generator"),
	}
}

type emojiResponse struct {
	PlotWithEmoji string `json:"plot_with_emoji"`
	Explanation   string `json:"explanation"`
}

// Generate runs the plot stage and then the emoji stage for title.
func (g *Generator) Generate(ctx context.Context, title string) (movieplot.Artifact, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StagePlot, Err: errors.New("title is empty")}
	}
	if g.service == nil {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StagePlot, Err: errors.New("text service unavailable")}
	}
	logger := g.logger.With(logging.String(logging.FieldTitle, title))
	started := time.Now()

	plot, err := g.service.CompleteText(ctx, SystemPrompt, PlotPrompt(title, g.opts.MinPlotBeats))
	if err != nil {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StagePlot, Err: err}
	}
	plot = strings.TrimSpace(plot)
	if plot == "" {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StagePlot, Err: errors.New("empty plot")}
	}
	logger.Debug("plot stage complete", logging.Int("plot_chars", len(plot)))

	content, err := g.service.CompleteJSON(ctx, SystemPrompt, EmojiPrompt(title, plot, g.opts.Rules.MinEmoji))
	if err != nil {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StageEmoji, Err: err}
	}
	var parsed emojiResponse
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StageEmoji, Err: err}
	}

	artifact, err := movieplot.New(title, plot, strings.TrimSpace(parsed.PlotWithEmoji), strings.TrimSpace(parsed.Explanation))
	if err != nil {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StageEmoji, Err: err}
	}
	if err := movieplot.Validate(artifact, g.opts.Rules); err != nil {
		return movieplot.Artifact{}, &Error{Title: title, Stage: StageValidate, Err: err}
	}

	stats := movieplot.AnalyzeEmoji(artifact.PlotWithEmoji)
	logger.Info("artifact generated",
		logging.String(logging.FieldEventType, "artifact_generated"),
		logging.Int("emoji", stats.Emoji),
		logging.Int("distinct_emoji", stats.Distinct),
		logging.Duration("duration", time.Since(started)))
	return artifact, nil
}
