package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/torchbuildgo/internal/app"
	"github.com/vk/torchbuildgo/internal/cli"
	"github.com/vk/torchbuildgo/internal/executor"
	"github.com/vk/torchbuildgo/internal/fetch"
	"github.com/vk/torchbuildgo/internal/hcl_adapter"
	"github.com/vk/torchbuildgo/internal/rpath"
)

// main is the entrypoint for the torchbuildgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to surface
	// a clean error to the caller instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()

	// Instantiate the concrete collaborators to pass to the app.
	loader := hcl_adapter.NewLoader(appConfig.HostOS)
	fetcher := &fetch.DirFetcher{Root: appConfig.StorePath}
	exec := &executor.Local{}
	rewriter := &rpath.PatchelfRewriter{}

	buildApp := app.New(outW, appConfig, loader, fetcher, exec, rewriter)

	return buildApp.Run(context.Background())
}
