// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/cmd"
)

func main() {
	// Create the logger instance at the very beginning. The level is adjusted
	// once the configuration is loaded.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	if err := run(logger, level, os.Args[1:]); err != nil {
		logger.Error("Application terminated with an error", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, level *slog.LevelVar, args []string) error {
	ctx, cancel := signal.NotifyContext(appcontext.WithLogger(context.Background(), logger), os.Interrupt)
	defer cancel()

	root := cmd.NewRootCmd(level)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
