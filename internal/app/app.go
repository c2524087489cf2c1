package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/torchbuildgo/internal/config"
	"github.com/vk/torchbuildgo/internal/ctxlog"
	"github.com/vk/torchbuildgo/internal/executor"
	"github.com/vk/torchbuildgo/internal/fetch"
	"github.com/vk/torchbuildgo/internal/rpath"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	fetcher  fetch.Fetcher
	executor executor.Executor
	rewriter rpath.Rewriter
}

// New is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded,
// sanity-checked configuration model.
func New(outW io.Writer, appConfig *Config, loader config.Loader, fetcher fetch.Fetcher, exec executor.Executor, rewriter rpath.Rewriter) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded into unified model.", "packages", len(model.Packages))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		model:    model,
		fetcher:  fetcher,
		executor: exec,
		rewriter: rewriter,
	}
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
