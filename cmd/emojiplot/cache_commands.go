package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"emojiplot/internal/catalog"
	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and pre-generate cached artifacts",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheWarmCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			titles, err := ctx.loadCatalog()
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, cacheEntriesJSON(entries, titles))
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				title, ok := titles.TitleForKey(entry.Key)
				if !ok {
					title = "-"
				}
				rows = append(rows, []string{
					entry.Key,
					title,
					humanize.Bytes(uint64(max(entry.Size, 0))),
					humanize.Time(entry.UpdatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Title", "Size", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d of %d titles cached\n", len(entries), titles.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <title>",
		Short: "Print a cached artifact without generating it",
		Args:  cobra.ExactArgs(1),
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

			title := resolveTitle(titles, args[0])
			artifact, err := store.Load(cmd.Context(), movieplot.KeyFor(title))
			if err != nil {
				if services.IsCacheMiss(err) {
					return fmt.Errorf("no cached artifact for %q", title)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := movieplot.Encode(artifact)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintf(out, "Title: %s\n\n%s\n\n", artifact.Title, artifact.PlotWithEmoji)
			fmt.Fprintf(out, "Explanation:\n%s\n\n", artifact.Explanation)
			fmt.Fprintf(out, "Plot:\n%s\n", artifact.Plot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the stored payload")
	return cmd
}

func newCacheWarmCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "warm [title...]",
		Short: "Generate artifacts for titles that are not cached yet",
		Long: "Generate artifacts ahead of play. Without arguments every uncached title in the\n" +
			"list is generated, up to --limit when set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(true)
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

			candidates := titles.Titles()
			if len(args) > 0 {
				candidates = candidates[:0]
				for _, arg := range args {
					candidates = append(candidates, resolveTitle(titles, arg))
				}
			}
			cached, err := library.CachedKeys(cmd.Context(), candidates)
			if err != nil {
				return err
			}
			var pending []string
			for _, title := range candidates {
				if _, ok := cached[movieplot.KeyFor(title)]; ok {
					continue
				}
				pending = append(pending, title)
			}
			if limit > 0 && len(pending) > limit {
				pending = pending[:limit]
			}

			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, "Nothing to generate; every requested title is cached")
				return nil
			}

			bar := progressbar.NewOptions(len(pending),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("generating"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			var failed []string
			for _, title := range pending {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				bar.Describe(title)
				if _, err := library.GetOrGenerate(cmd.Context(), movieplot.KeyFor(title), title); err != nil {
					logging.WarnWithContext(logger, "warm generation failed", "cache_warm_failed",
						logging.String(logging.FieldTitle, title),
						logging.Error(err),
						logging.String(logging.FieldImpact, "title will be generated on demand during play"),
					)
					failed = append(failed, title)
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Fprintf(out, "Generated %d of %d titles\n", len(pending)-len(failed), len(pending))
			if len(failed) > 0 {
				return fmt.Errorf("%d titles failed: %s", len(failed), strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Generate at most this many titles (0 = all)")
	return cmd
}

// resolveTitle maps a title or cache key onto the catalog title, falling back
// to the trimmed input for titles outside the list.
func resolveTitle(titles *catalog.Catalog, value string) string {
	if title, ok := titles.Resolve(value); ok {
		return title
	}
	return strings.TrimSpace(value)
}
