package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emojiplot/internal/movieplot"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List candidate titles and whether each is cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			titles, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			items := make([]titleJSON, 0, titles.Len())
			cachedCount := 0
			for _, title := range titles.Titles() {
				key := movieplot.KeyFor(title)
				exists, err := store.Exists(cmd.Context(), key)
				if err != nil {
					return err
				}
				if exists {
					cachedCount++
				}
				items = append(items, titleJSON{Title: title, Key: key, Cached: exists})
			}

			if jsonOutput {
				return writeJSON(cmd, items)
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{item.Title, item.Key, yesNo(item.Cached)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Title", "Key", "Cached"}, rows, nil))
			fmt.Fprintf(out, "%d titles, %d cached\n", len(items), cachedCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
