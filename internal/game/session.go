// Package game exposes the three operations a front-end drives: initialize a
// session, reveal the current answer, and advance to the next movie.
package game

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/pipeline"
	"emojiplot/internal/sequencer"
	"emojiplot/internal/services"
)

// ExhaustedMessage is shown once every title has been offered.
const ExhaustedMessage = "All movies in database exhausted."

// Library resolves artifacts and reports which titles are already cached.
type Library interface {
	pipeline.Source
	CachedKeys(ctx context.Context, titles []string) (map[string]struct{}, error)
}

// Round is what the player sees before guessing.
type Round struct {
	Title     string
	EmojiPlot string
	Position  int
	Total     int
	Exhausted bool
	Message   string
}

// Reveal is the full answer for a round.
type Reveal struct {
	Title       string
	Plot        string
	EmojiPlot   string
	Explanation string
	Guess       string
}

// Session is one player's pass through the title list.
type Session struct {
	id       string
	titles   []string
	library  Library
	sequence *sequencer.Sequencer
	pipe     *pipeline.Pipeline
	logger   *slog.Logger
}

// NewSession prepares a session over titles. Nothing is generated until Initialize.
func NewSession(library Library, titles []string, seq *sequencer.Sequencer, logger *slog.Logger) *Session {
	if seq == nil {
		seq = sequencer.New(nil)
	}
	id := uuid.NewString()
	logger = logging.NewComponentLogger(logger, "game").With(logging.String(logging.FieldSessionID, id))
	return &Session{
		id:       id,
		titles:   append([]string(nil), titles...),
		library:  library,
		sequence: seq,
		pipe:     pipeline.New(library, logger),
		logger:   logger,
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// State reports the underlying pipeline state.
func (s *Session) State() pipeline.State {
	return s.pipe.State()
}

// context tags ctx with the session id and a fresh correlation id, so the
// prefetch launched by a call can be traced back to it.
func (s *Session) context(ctx context.Context) context.Context {
	ctx = services.WithSessionID(ctx, s.id)
	return services.WithRequestID(ctx, uuid.NewString())
}

// Initialize builds the title order, preferring a cached title first, and
// returns the first round.
func (s *Session) Initialize(ctx context.Context) (Round, error) {
	ctx = s.context(ctx)
	cached, err := s.library.CachedKeys(ctx, s.titles)
	if err != nil {
		return Round{}, err
	}
	order := s.sequence.BuildOrder(s.titles, cached)
	s.logger.Info("session started",
		logging.String(logging.FieldEventType, "session_started"),
		logging.Int("titles", len(order)),
		logging.Int("cached", len(cached)))

	entry, ok, err := s.pipe.Start(ctx, order)
	return s.round(entry, ok, err)
}

// Advance moves to the next round. Once every title has been offered it
// returns a Round with Exhausted set and ExhaustedMessage, not an error.
// If Initialize failed before the pipeline started, Advance retries it.
func (s *Session) Advance(ctx context.Context) (Round, error) {
	if s.pipe.State() == pipeline.StateEmpty {
		return s.Initialize(ctx)
	}
	entry, ok, err := s.pipe.Advance(s.context(ctx))
	return s.round(entry, ok, err)
}

// Reveal returns the full answer for title alongside the player's guess.
func (s *Session) Reveal(ctx context.Context, title, guess string) (Reveal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Reveal{}, services.Wrap(services.ErrValidation, "game", "reveal", "no title to reveal", nil)
	}
	if current, ok := s.pipe.Current(); ok && current.Title == title {
		return revealOf(current.Artifact, guess), nil
	}
	artifact, err := s.library.GetOrGenerate(s.context(ctx), movieplot.KeyFor(title), title)
	if err != nil {
		return Reveal{}, err
	}
	return revealOf(artifact, guess), nil
}

// Close waits for the outstanding prefetch so its result reaches the cache.
func (s *Session) Close() {
	s.pipe.Wait()
	s.logger.Debug("session closed")
}

func (s *Session) round(entry pipeline.Entry, ok bool, err error) (Round, error) {
	if err != nil {
		return Round{}, err
	}
	if !ok {
		s.logger.Info("titles exhausted", logging.String(logging.FieldEventType, "session_exhausted"))
		return Round{Exhausted: true, Message: ExhaustedMessage, Total: s.pipe.Total()}, nil
	}
	return Round{
		Title:     entry.Title,
		EmojiPlot: entry.Artifact.PlotWithEmoji,
		Position:  entry.Position,
		Total:     s.pipe.Total(),
	}, nil
}

func revealOf(a movieplot.Artifact, guess string) Reveal {
	return Reveal{
		Title:       a.Title,
		Plot:        a.Plot,
		EmojiPlot:   a.PlotWithEmoji,
		Explanation: a.Explanation,
		Guess:       strings.TrimSpace(guess),
	}
}
