package testsupport

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// FakeTextService answers plot and emoji prompts without a network.
//
// CompleteText returns a numbered plot; CompleteJSON returns an emoji
// translation object. Titles listed in FailTitles fail the plot stage.
type FakeTextService struct {
	Delay      time.Duration
	EmojiPlot  string
	FailTitles map[string]bool
	HealthErr  error

	textCalls atomic.Int32
	jsonCalls atomic.Int32

	mu     sync.Mutex
	titles []string
}

// ErrFakeFailure is returned for titles listed in FailTitles.
var ErrFakeFailure = errors.New("fake text service failure")

func (f *FakeTextService) CompleteText(ctx context.Context, _ string, userPrompt string) (string, error) {
	f.textCalls.Add(1)
	title := titleFromPrompt(userPrompt)
	f.mu.Lock()
	f.titles = append(f.titles, title)
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	if f.FailTitles[title] {
		return "", ErrFakeFailure
	}
	return PlotFor(title), nil
}

func (f *FakeTextService) CompleteJSON(_ context.Context, _ string, _ string) (string, error) {
	f.jsonCalls.Add(1)
	plot := f.EmojiPlot
	if plot == "" {
		plot = EmojiPlot
	}
	plot = strings.ReplaceAll(plot, "\n", `\n`)
	return `{"plot_with_emoji":"` + plot + `","explanation":"🏜️ is the desert planet."}`, nil
}

// PlotCalls reports how many plot-stage requests were made.
func (f *FakeTextService) PlotCalls() int {
	return int(f.textCalls.Load())
}

// EmojiCalls reports how many emoji-stage requests were made.
func (f *FakeTextService) EmojiCalls() int {
	return int(f.jsonCalls.Load())
}

// Titles returns the titles requested so far, in call order.
func (f *FakeTextService) Titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titles...)
}

// titleFromPrompt extracts the movie title from the first line of a user
// prompt ("The title of the movie is <title>.").
func titleFromPrompt(prompt string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	line = strings.TrimPrefix(line, "The title of the movie is ")
	return strings.TrimSuffix(line, ".")
}

// HealthCheck reports HealthErr, nil by default.
func (f *FakeTextService) HealthCheck(context.Context) error {
	return f.HealthErr
}
