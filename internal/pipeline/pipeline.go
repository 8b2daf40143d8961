package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/sequencer"
)

var (
	// ErrNotStarted is returned by Advance before Start.
	ErrNotStarted = errors.New("pipeline not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("pipeline already started")
)

// Source resolves a title to its artifact, from cache or by generating it.
type Source interface {
	GetOrGenerate(ctx context.Context, key, title string) (movieplot.Artifact, error)
}

// Entry is one title exposed to the caller.
type Entry struct {
	Title    string
	Key      string
	Artifact movieplot.Artifact
	// Position is the 1-based offer index within the order.
	Position int
}

type pending struct {
	title    string
	key      string
	position int
	started  time.Time
	done     chan struct{}
	artifact movieplot.Artifact
	err      error
}

// Pipeline is the prefetch state machine. The zero value is not usable; call New.
type Pipeline struct {
	source Source
	logger *slog.Logger

	// transition serializes Start and Advance.
	transition sync.Mutex

	mu      sync.Mutex
	state   State
	queue   *sequencer.Queue
	current *Entry
	next    *pending
	total   int

	inflight sync.WaitGroup
}

// New constructs an idle pipeline over source.
func New(source Source, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source: source,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		state:  StateEmpty,
	}
}

// Start consumes order, resolves its first title and begins computing the
// second. ok is false when order is empty; no computation happens then.
// An error from the first title is returned after the second title's
// computation has been started, leaving the pipeline advanceable.
func (p *Pipeline) Start(ctx context.Context, order []string) (Entry, bool, error) {
	p.transition.Lock()
	defer p.transition.Unlock()

	p.mu.Lock()
	if p.state != StateEmpty {
		p.mu.Unlock()
		return Entry{}, false, ErrAlreadyStarted
	}
	p.queue = sequencer.NewQueue(order)
	p.total = len(order)
	title, ok := p.queue.Pop()
	if !ok {
		p.state = StateExhausted
		p.mu.Unlock()
		p.logger.Info("pipeline started with no titles", logging.String(logging.FieldEventType, "pipeline_exhausted"))
		return Entry{}, false, nil
	}
	p.state = StateAdvancing
	first := &pending{title: title, key: movieplot.KeyFor(title), position: 1, started: time.Now()}
	p.mu.Unlock()

	logger := logging.WithContext(ctx, p.logger)
	logger.Debug("resolving first title", logging.String(logging.FieldTitle, title), logging.Int("titles", len(order)))
	first.artifact, first.err = p.source.GetOrGenerate(ctx, first.key, first.title)

	return p.expose(ctx, first)
}

// Advance waits for the in-flight title, exposes it and begins computing the
// following one. It returns ok=false once the order is exhausted. If ctx ends
// while waiting, the in-flight title is kept for the next call.
func (p *Pipeline) Advance(ctx context.Context) (Entry, bool, error) {
	p.transition.Lock()
	defer p.transition.Unlock()

	p.mu.Lock()
	switch p.state {
	case StateEmpty:
		p.mu.Unlock()
		return Entry{}, false, ErrNotStarted
	case StateExhausted:
		p.mu.Unlock()
		return Entry{}, false, nil
	}
	next := p.next
	p.state = StateAdvancing
	p.mu.Unlock()

	select {
	case <-next.done:
	case <-ctx.Done():
		p.mu.Lock()
		p.state = StatePrimed
		p.mu.Unlock()
		return Entry{}, false, ctx.Err()
	}
	return p.expose(ctx, next)
}

// expose promotes resolved to current, launches the following title when one
// remains, and settles the state.
func (p *Pipeline) expose(ctx context.Context, resolved *pending) (Entry, bool, error) {
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldTitle, resolved.title))

	p.mu.Lock()
	p.next = nil
	var entry Entry
	if resolved.err == nil {
		entry = Entry{
			Title:    resolved.title,
			Key:      resolved.key,
			Artifact: resolved.artifact,
			Position: resolved.position,
		}
		p.current = &entry
	}
	if title, ok := p.queue.Pop(); ok {
		p.next = p.launch(ctx, title, resolved.position+1)
		p.state = StatePrimed
	} else {
		p.state = StateExhausted
	}
	state := p.state
	p.mu.Unlock()

	if resolved.err != nil {
		logger.Debug("title failed", logging.Error(resolved.err), logging.String("state", state.String()))
		return Entry{}, false, resolved.err
	}
	logger.Debug("title exposed",
		logging.Int("position", resolved.position),
		logging.Duration("wait", time.Since(resolved.started)),
		logging.String("state", state.String()))
	return entry, true, nil
}

// launch starts the background computation for title. Callers hold p.mu.
func (p *Pipeline) launch(ctx context.Context, title string, position int) *pending {
	job := &pending{
		title:    title,
		key:      movieplot.KeyFor(title),
		position: position,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
	work := context.WithoutCancel(ctx)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer close(job.done)
		job.artifact, job.err = p.source.GetOrGenerate(work, job.key, job.title)
	}()
	return job
}

// State reports the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the most recently exposed entry.
func (p *Pipeline) Current() (Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Entry{}, false
	}
	return *p.current, true
}

// Remaining counts titles not yet exposed, including the one in flight.
func (p *Pipeline) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	remaining := 0
	if p.queue != nil {
		remaining = p.queue.Len()
	}
	if p.next != nil {
		remaining++
	}
	return remaining
}

// Total returns the length of the order passed to Start.
func (p *Pipeline) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Wait blocks until the background computation, if any, has finished.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}
