// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/linthub/linthub/internal/config"
	"github.com/linthub/linthub/internal/engine"
)

type (
	// App wires CLI services and shared dependencies. Command handlers receive
	// an App and reach configuration and the engine through it.
	App struct {
		Config    ConfigProvider
		NewEngine EngineFactory
		stdout    io.Writer
		stderr    io.Writer

		configPath string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		NewEngine EngineFactory
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// EngineFactory builds the engine serving one command.
	EngineFactory func(opts engine.Options) (*engine.Engine, error)

	// services is what a command handler works with.
	services struct {
		cfg    *config.Config
		source string
		logger *slog.Logger
		engine *engine.Engine
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewEngine == nil {
		deps.NewEngine = engine.New
	}
	return &App{
		Config:    deps.Config,
		NewEngine: deps.NewEngine,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadConfig reads the configuration named by --config, or the default file.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	return a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
}

// start loads the configuration, installs the logger and builds the engine.
// The caller closes the engine.
func (a *App) start(ctx context.Context) (*services, error) {
	cfg, source, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := newLogger(a.stderr, cfg.Log, a.verbose)
	slog.SetDefault(logger)
	if source != "" {
		logger.Debug("configuration loaded", "path", source)
	}

	eng, err := a.NewEngine(engine.Options{
		Config:    cfg,
		Logger:    logger,
		UserAgent: "linthub/" + Version,
	})
	if err != nil {
		return nil, err
	}
	return &services{cfg: cfg, source: source, logger: logger, engine: eng}, nil
}
