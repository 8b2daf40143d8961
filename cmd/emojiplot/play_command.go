package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"emojiplot/internal/game"
	"emojiplot/internal/tui"
)

const quitCommand = "/quit"

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start a guessing session",
		Long: "Start a guessing session. The interactive screen is used when stdin and stdout\n" +
			"are terminals; --plain (or a redirected stream) switches to line mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := !plain && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())

			// The interactive screen owns the terminal, so logs go to the file only.
			logger, err := ctx.logger(interactive)
			if err != nil {
				return err
			}
			titles, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			library, closeLibrary, err := ctx.library(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeLibrary()

			session := game.NewSession(library, titles.Titles(), nil, logger)
			defer session.Close()

			if interactive {
				return tui.Run(cmd.Context(), session)
			}
			return plainPlay(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Use line mode instead of the interactive screen")
	return cmd
}

// plainPlay drives a session over line-oriented input. It returns nil when the
// player quits, input ends or every title has been offered.
func plainPlay(ctx context.Context, g tui.Game, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	fmt.Fprintln(out, "Guess the movie from its plot in emoji.")
	round, err := g.Initialize(ctx)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
			line, ok := readLine("Press enter to skip to the next movie, q to quit: ")
			if !ok || strings.EqualFold(line, "q") {
				return nil
			}
			round, err = g.Advance(ctx)
			continue
		}
		if round.Exhausted {
			fmt.Fprintf(out, "\n%s\n", round.Message)
			return nil
		}

		fmt.Fprintf(out, "\nMovie %d of %d\n\n%s\n\n", round.Position, round.Total, round.EmojiPlot)
		guess, ok := readLine(fmt.Sprintf("Your guess (enter to reveal, %s to quit): ", quitCommand))
		if !ok || guess == quitCommand {
			return nil
		}

		reveal, revealErr := g.Reveal(ctx, round.Title, guess)
		if revealErr != nil {
			fmt.Fprintf(out, "\nError: %v\n", revealErr)
		} else {
			writeReveal(out, reveal)
		}

		line, ok := readLine("Press enter for the next movie, q to quit: ")
		if !ok || strings.EqualFold(line, "q") {
			return nil
		}
		round, err = g.Advance(ctx)
	}
}

func writeReveal(out io.Writer, reveal game.Reveal) {
	fmt.Fprintln(out)
	if reveal.Guess != "" {
		fmt.Fprintf(out, "Your guess: %s\n", reveal.Guess)
	}
	fmt.Fprintf(out, "Movie title: %s\n\n", reveal.Title)
	fmt.Fprintf(out, "Emoji explanation:\n%s\n\n", reveal.Explanation)
	fmt.Fprintf(out, "Plot:\n%s\n\n", reveal.Plot)
}

