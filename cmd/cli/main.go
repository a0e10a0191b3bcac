package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/relaygrid/internal/app"
	"github.com/vk/relaygrid/internal/cli"
	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/watch"
)

// main is the entrypoint for the relaygrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	if len(args) > 0 && args[0] == "watch" {
		return runWatch(ctx, outW, args[1:])
	}
	if len(args) > 0 && args[0] == "serve" {
		args = args[1:]
	}

	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	relaygrid, err := app.NewApp(outW, appConfig)
	if err != nil {
		return fmt.Errorf("application startup failed: %w", err)
	}
	return relaygrid.Run(ctx)
}

func runWatch(ctx context.Context, outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.ParseWatch(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	return watch.Run(ctxlog.WithLogger(ctx, slog.Default()), outW, *opts)
}
