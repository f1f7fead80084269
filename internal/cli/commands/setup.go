package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/config"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/output"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := getLogger(cmd)

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands executed outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if cfg.StatePath != ":memory:" && stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0o750); err != nil {
			return nil, err
		}
	}

	engineCfg := engine.Config{
		Records:     cfg.Records,
		IndexScript: cfg.Index.Script,
		IndexSQL:    cfg.Index.SQL,
		StatePath:   cfg.StatePath,
		Concurrency: cfg.Concurrency,
		ExportDir:   cfg.ExportDir,
		Logger:      logger,
	}
	if cfg.Target != nil {
		engineCfg.Target = *cfg.Target
	}

	return engine.New(engineCfg)
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	if ctx := cmd.Context(); ctx != nil {
		return config.GetLogger(ctx)
	}
	return slog.New(slog.DiscardHandler)
}
