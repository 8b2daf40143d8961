// Package tui is the interactive terminal front-end for a game session.
//
// The model follows bubbletea's update loop: key presses become commands that
// call into the session off the UI goroutine, and their results come back as
// messages. Enter reveals the answer for the current round, and enter again
// (or ctrl+n at any time) moves on to the next movie.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"emojiplot/internal/game"
)

// Game is the subset of game.Session the TUI drives.
type Game interface {
	Initialize(ctx context.Context) (game.Round, error)
	Advance(ctx context.Context) (game.Round, error)
	Reveal(ctx context.Context, title, guess string) (game.Reveal, error)
}

type phase int

const (
	phaseLoading phase = iota
	phaseGuessing
	phaseRevealing
	phaseRevealed
	phaseExhausted
)

type roundMsg struct {
	round game.Round
	err   error
}

type revealMsg struct {
	reveal game.Reveal
	err    error
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	emojiStyle   = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Model is the bubbletea model for one session.
type Model struct {
	ctx     context.Context
	game    Game
	input   textinput.Model
	spinner spinner.Model

	phase  phase
	round  game.Round
	reveal game.Reveal
	err    error
	width  int
}

// New builds a model over g. ctx is passed to every session call.
func New(ctx context.Context, g Game) Model {
	input := textinput.New()
	input.Placeholder = "Your guess"
	input.CharLimit = 120
	input.Width = 50

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		ctx:     ctx,
		game:    g,
		input:   input,
		spinner: spin,
		phase:   phaseLoading,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initialize())
}

func (m Model) initialize() tea.Cmd {
	return func() tea.Msg {
		round, err := m.game.Initialize(m.ctx)
		return roundMsg{round: round, err: err}
	}
}

func (m Model) advance() tea.Cmd {
	return func() tea.Msg {
		round, err := m.game.Advance(m.ctx)
		return roundMsg{round: round, err: err}
	}
}

func (m Model) revealCmd(title, guess string) tea.Cmd {
	return func() tea.Msg {
		reveal, err := m.game.Reveal(m.ctx, title, guess)
		return revealMsg{reveal: reveal, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case roundMsg:
		m.err = msg.err
		m.reveal = game.Reveal{}
		switch {
		case msg.err != nil:
			// The failed movie is consumed; ctrl+n moves on.
			m.phase = phaseRevealed
			m.round = game.Round{}
		case msg.round.Exhausted:
			m.phase = phaseExhausted
			m.round = msg.round
			m.input.Blur()
		default:
			m.phase = phaseGuessing
			m.round = msg.round
			m.input.Reset()
			return m, m.input.Focus()
		}
		return m, nil

	case revealMsg:
		m.err = msg.err
		if msg.err != nil {
			m.phase = phaseGuessing
			return m, m.input.Focus()
		}
		m.reveal = msg.reveal
		m.phase = phaseRevealed
		m.input.Blur()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.phase == phaseGuessing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyCtrlN:
		if m.phase == phaseGuessing || m.phase == phaseRevealed {
			return m.next()
		}
		return m, nil
	case tea.KeyEnter:
		switch m.phase {
		case phaseGuessing:
			m.phase = phaseRevealing
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.revealCmd(m.round.Title, m.input.Value()))
		case phaseRevealed:
			return m.next()
		case phaseExhausted:
			return m, tea.Quit
		}
		return m, nil
	}

	if m.phase == phaseGuessing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if m.phase == phaseExhausted && msg.String() == "q" {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) next() (tea.Model, tea.Cmd) {
	m.phase = phaseLoading
	m.err = nil
	m.reveal = game.Reveal{}
	m.input.Reset()
	m.input.Blur()
	return m, tea.Batch(m.spinner.Tick, m.advance())
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Guess the movie from its plot in emoji"))
	if m.round.Total > 0 && m.round.Position > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d of %d)", m.round.Position, m.round.Total)))
	}
	b.WriteString("\n\n")

	switch m.phase {
	case phaseLoading:
		b.WriteString(m.spinner.View() + " Preparing the next movie...\n")
	case phaseExhausted:
		b.WriteString(m.round.Message + "\n\n")
		b.WriteString(dimStyle.Render("enter or q to quit"))
		return b.String()
	default:
		if m.round.EmojiPlot != "" {
			b.WriteString(emojiStyle.Render(m.round.EmojiPlot) + "\n\n")
		}
	}

	switch m.phase {
	case phaseGuessing:
		b.WriteString(m.input.View() + "\n\n")
		b.WriteString(dimStyle.Render("enter reveal · ctrl+n next movie · esc quit"))
	case phaseRevealing:
		b.WriteString(m.spinner.View() + " Revealing...\n")
	case phaseRevealed:
		if m.reveal.Title != "" {
			b.WriteString(m.renderReveal())
		}
		b.WriteString(dimStyle.Render("enter or ctrl+n next movie · esc quit"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}
	return b.String()
}

func (m Model) renderReveal() string {
	var b strings.Builder
	if guess := m.reveal.Guess; guess != "" {
		b.WriteString(labelStyle.Render("Your guess") + "\n" + guess + "\n\n")
	}
	b.WriteString(labelStyle.Render("Movie title") + "\n" + successStyle.Render(m.reveal.Title) + "\n\n")
	b.WriteString(labelStyle.Render("Emoji explanation") + "\n" + m.wrap(m.reveal.Explanation) + "\n\n")
	b.WriteString(labelStyle.Render("Plot") + "\n" + m.wrap(m.reveal.Plot) + "\n\n")
	return b.String()
}

func (m Model) wrap(text string) string {
	if m.width <= 4 {
		return text
	}
	return lipgloss.NewStyle().Width(m.width - 2).Render(text)
}

// Run starts the interactive program on the alternate screen and blocks
// until the player quits.
func Run(ctx context.Context, g Game) error {
	program := tea.NewProgram(New(ctx, g), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
