package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/topten/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrMissingConfig), errors.Is(err, shared.ErrMissingCredentials):
			logger.Error("configuration error", "error", err)
			logger.Info("set the values in config.toml or the environment, see `topten setup config`")
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

// newApp builds the root command. Global flags are read by [Runner.Before].
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "topten",
		Usage:   "Rank, rate and review your favourite movies",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("TOPTEN_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}
