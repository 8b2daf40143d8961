package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emojiplot/internal/generator"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the artifact store and text service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			store, err := ctx.openStore(logger)
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context())
			store.Close()
			if err != nil {
				return fmt.Errorf("artifact store: %w", err)
			}
			fmt.Fprintf(out, "Artifact store (%s): ok, %d cached\n", cfg.Cache.Backend, len(entries))

			service, err := ctx.newTextService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			checker, ok := service.(generator.HealthChecker)
			if !ok {
				fmt.Fprintf(out, "Text service (%s): configured, no health check available\n", cfg.LLM.Provider)
				return nil
			}
			if err := checker.HealthCheck(cmd.Context()); err != nil {
				fmt.Fprintf(out, "Text service (%s): failed\n", cfg.LLM.Provider)
				return fmt.Errorf("text service health check: %w", err)
			}
			fmt.Fprintf(out, "Text service (%s): ok\n", cfg.LLM.Provider)
			return nil
		},
	}
}
