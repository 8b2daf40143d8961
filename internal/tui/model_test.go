package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"emojiplot/internal/game"
)

type fakeGame struct {
	rounds  []game.Round
	reveals int
	guesses []string
	failOn  string
}

func (f *fakeGame) Initialize(context.Context) (game.Round, error) {
	return f.pop(), nil
}

func (f *fakeGame) Advance(context.Context) (game.Round, error) {
	return f.pop(), nil
}

func (f *fakeGame) pop() game.Round {
	if len(f.rounds) == 0 {
		return game.Round{Exhausted: true, Message: game.ExhaustedMessage}
	}
	r := f.rounds[0]
	f.rounds = f.rounds[1:]
	return r
}

func (f *fakeGame) Reveal(_ context.Context, title, guess string) (game.Reveal, error) {
	f.reveals++
	f.guesses = append(f.guesses, guess)
	if title == f.failOn {
		return game.Reveal{}, errors.New("reveal failed")
	}
	return game.Reveal{Title: title, Plot: "plot of " + title, EmojiPlot: "🏜️🐛", Explanation: "desert worm", Guess: guess}, nil
}

// run executes cmd and feeds session results back into the model. Spinner
// ticks and cursor blinks returned alongside are not followed.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case roundMsg, revealMsg:
			updated, _ := m.Update(msg)
			m = updated.(Model)
		}
	}
	return m
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(key)
	return updated.(Model), cmd
}

func TestModelPlaysThroughRounds(t *testing.T) {
	g := &fakeGame{rounds: []game.Round{
		{Title: "Dune", EmojiPlot: "🏜️🐛", Position: 1, Total: 2},
		{Title: "Jaws", EmojiPlot: "🦈🌊", Position: 2, Total: 2},
	}}
	m := New(context.Background(), g)
	m = run(t, m, m.Init())
	if m.phase != phaseGuessing || m.round.Title != "Dune" {
		t.Fatalf("expected first round, got phase=%d round=%+v", m.phase, m.round)
	}
	if !strings.Contains(m.View(), "🏜️🐛") || strings.Contains(m.View(), "Dune") {
		t.Fatalf("view should show emoji but hide the title:\n%s", m.View())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Arrakis")})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseRevealing {
		t.Fatalf("expected revealing phase, got %d", m.phase)
	}
	m = run(t, m, cmd)
	if m.phase != phaseRevealed || m.reveal.Title != "Dune" {
		t.Fatalf("expected reveal, got phase=%d reveal=%+v", m.phase, m.reveal)
	}
	if g.guesses[0] != "Arrakis" {
		t.Fatalf("guess not forwarded: %v", g.guesses)
	}
	view := m.View()
	for _, want := range []string{"Arrakis", "Dune", "desert worm", "plot of Dune"} {
		if !strings.Contains(view, want) {
			t.Fatalf("reveal view missing %q:\n%s", want, view)
		}
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseLoading || m.input.Value() != "" {
		t.Fatalf("expected loading with cleared guess, got phase=%d value=%q", m.phase, m.input.Value())
	}
	m = run(t, m, cmd)
	if m.round.Title != "Jaws" || m.phase != phaseGuessing {
		t.Fatalf("expected second round, got %+v", m.round)
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = run(t, m, cmd)
	if m.phase != phaseExhausted || !strings.Contains(m.View(), game.ExhaustedMessage) {
		t.Fatalf("expected exhaustion view, got:\n%s", m.View())
	}
	if g.reveals != 1 {
		t.Fatalf("expected one reveal, got %d", g.reveals)
	}
}

func TestModelRevealErrorReturnsToGuessing(t *testing.T) {
	g := &fakeGame{rounds: []game.Round{{Title: "Dune", EmojiPlot: "🏜️", Position: 1, Total: 1}}, failOn: "Dune"}
	m := New(context.Background(), g)
	m = run(t, m, m.Init())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)
	if m.phase != phaseGuessing || m.err == nil {
		t.Fatalf("expected guessing with error, got phase=%d err=%v", m.phase, m.err)
	}
	if !strings.Contains(m.View(), "reveal failed") {
		t.Fatalf("error not rendered:\n%s", m.View())
	}
}

func TestModelRoundErrorAllowsSkipping(t *testing.T) {
	m := New(context.Background(), &fakeGame{})
	updated, _ := m.Update(roundMsg{err: errors.New("generation failed")})
	m = updated.(Model)
	if m.phase != phaseRevealed || !strings.Contains(m.View(), "generation failed") {
		t.Fatalf("expected error view, got phase=%d:\n%s", m.phase, m.View())
	}
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = run(t, m, cmd)
	if m.phase != phaseExhausted {
		t.Fatalf("expected exhaustion after skipping, got %d", m.phase)
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := New(context.Background(), &fakeGame{})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
