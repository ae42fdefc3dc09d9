package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/digitalhub-labs/digitalhub/internal/cli/config"
	"github.com/digitalhub-labs/digitalhub/internal/cli/output"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog/sqlite"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
	"github.com/digitalhub-labs/digitalhub/pkg/runtimes/dbt"
	"github.com/digitalhub-labs/digitalhub/pkg/runtimes/nefertem"
	"github.com/digitalhub-labs/digitalhub/pkg/storage"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Catalog  catalog.Catalog
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open catalog.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	cat, err := openCatalog(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = cat.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Catalog:  cat,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext without a catalog.
// Useful for commands that don't need persisted state.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// RuntimeDeps assembles the dependencies passed to the runtime of a
// function kind. The object store is only created when s3 settings are
// present.
func (c *CommandContext) RuntimeDeps(kind string) (runtime.Deps, error) {
	deps := runtime.Deps{
		Logger:   c.Logger,
		Catalog:  c.Catalog,
		Postgres: c.Cfg.Postgres,
		WorkDir:  runtimeWorkDir(c.Cfg, kind),
		Commands: map[string][]string{},
	}
	if c.Cfg.DBT.Binary != "" {
		deps.Commands[dbt.Kind] = []string{c.Cfg.DBT.Binary}
	}
	if cmd := c.Cfg.NefertemCommand(); len(cmd) > 0 {
		deps.Commands[nefertem.Kind] = cmd
	}
	if !c.Cfg.S3.IsZero() {
		store, err := storage.New(c.Cfg.S3, c.Logger)
		if err != nil {
			return runtime.Deps{}, err
		}
		deps.Storage = store
	}
	return deps, nil
}

// runtimeWorkDir returns the working directory root for a function kind.
func runtimeWorkDir(cfg *config.Config, kind string) string {
	if kind == nefertem.Kind && cfg.Nefertem.OutputDir != "" {
		return cfg.Nefertem.OutputDir
	}
	return cfg.DBT.RootDir
}

// Helper functions shared across commands

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqlite.Store, error) {
	path := cfg.Catalog.Path
	if path != ":memory:" {
		// Ensure catalog directory exists
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create catalog directory: %w", err)
			}
		}
	}
	return sqlite.Open(ctx, path, logger)
}
