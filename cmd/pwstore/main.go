// Command pwstore is a local, single-user credential store: named secrets
// encrypted at rest under a single master passphrase.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/kharidiron/pwstore/internal/cli"
	"github.com/kharidiron/pwstore/internal/config"
	"github.com/kharidiron/pwstore/internal/iocli"
	"github.com/kharidiron/pwstore/internal/storage"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, storage.ErrStoreLocked) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, args, err := config.New(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.Version {
		printVersion()
		return nil
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	c := cli.New(iocli.NewStdio(), cfg, logger)

	return c.Run(context.Background(), args)
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "text":
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return slog.New(handler), nil
}

func printVersion() {
	fmt.Printf("pwstore\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
