package main

import (
	"context"
	"os"

	"github.com/desertthunder/moviex/internal/shared"
	"github.com/urfave/cli/v3"
)

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "moviex",
		Usage:    "Browse and manage a remote movie catalog",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
