package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"emojiplot/internal/catalog"
	"emojiplot/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the emojiplot configuration",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		target    string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample emojiplot configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := sampleConfigPath(target)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if !overwrite {
				switch _, err := os.Stat(path); {
				case err == nil:
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", path)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check %s: %w", path, err)
				}
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sample configuration written to %s\n", path)
			fmt.Fprintln(out, "Set llm.api_key (or export OPENROUTER_API_KEY) before playing.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "path", "p", "", "Where to write the configuration (default ~/.config/emojiplot/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func sampleConfigPath(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag != "" {
		return config.ExpandPath(flag)
	}
	return config.DefaultConfigPath()
}

// newConfigValidateCommand loads the configuration the way play does and
// prints the settings a game session will run with.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration and show the effective game settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			titles, err := catalog.Load(cfg.Paths.TitlesFile)
			if err != nil {
				return err
			}

			source := path
			if !exists {
				source = path + " (not found, defaults used)"
			}
			generation := "ready"
			if err := cfg.ValidateGeneration(); err != nil {
				generation = "not ready: " + err.Error()
			}
			rows := [][]string{
				{"Config file", source},
				{"Artifact store", cacheLocation(cfg)},
				{"Titles", titleSource(cfg, titles.Len())},
				{"Text service", textServiceLabel(cfg)},
				{"Emoji minimum", fmt.Sprintf("%d emoji, %d distinct", cfg.Generation.MinEmoji, cfg.Generation.MinDistinctEmoji)},
				{"Generation", generation},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func cacheLocation(cfg *config.Config) string {
	if cfg.Cache.Backend == config.BackendSQLite {
		return "sqlite " + cfg.Cache.SQLitePath
	}
	return "file " + cfg.ArtifactDir()
}

func titleSource(cfg *config.Config, count int) string {
	if cfg.Paths.TitlesFile == "" {
		return fmt.Sprintf("%d from the built-in list", count)
	}
	return fmt.Sprintf("%d from %s", count, cfg.Paths.TitlesFile)
}

func textServiceLabel(cfg *config.Config) string {
	if cfg.LLM.Provider == config.ProviderGemini {
		return fmt.Sprintf("%s (%s)", cfg.LLM.Provider, cfg.Gemini.Model)
	}
	return fmt.Sprintf("%s (%s)", cfg.LLM.Provider, cfg.LLM.Model)
}
