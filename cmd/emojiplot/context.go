package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"emojiplot/internal/artifactstore"
	"emojiplot/internal/catalog"
	"emojiplot/internal/config"
	"emojiplot/internal/generator"
	"emojiplot/internal/logging"
	"emojiplot/internal/plotcache"
)

type textServiceFactory func(ctx context.Context, cfg *config.Config) (generator.TextService, error)

type commandContext struct {
	configFlag string

	// newTextService is swapped out by tests.
	newTextService textServiceFactory

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{newTextService: generator.NewTextService}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger. Quiet loggers write to the log file only.
func (c *commandContext) logger(quiet bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, quiet)
}

func (c *commandContext) openStore(logger *slog.Logger) (artifactstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := artifactstore.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	return store, nil
}

func (c *commandContext) loadCatalog() (*catalog.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Load(cfg.Paths.TitlesFile)
}

// library wires text service, generator, store and cache together. The
// returned close function releases the store.
func (c *commandContext) library(ctx context.Context, logger *slog.Logger) (*plotcache.CachingGenerator, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	service, err := c.newTextService(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openStore(logger)
	if err != nil {
		return nil, nil, err
	}
	gen := generator.New(service, generator.OptionsFromConfig(cfg), logger)
	lib := plotcache.New(store, gen, plotcache.OptionsFromConfig(cfg), logger)
	return lib, func() { store.Close() }, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
