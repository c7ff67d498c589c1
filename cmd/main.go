package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				logger.Error(msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the command tree. Exit codes are left to the caller.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "hlsx",
		Usage:    "Check HLS master playlists against expected bandwidth ladders",
		Version:  version,
		Writer:   r.output,
		Commands: r.register(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   `Extra request header as "Key: Value" (repeatable)`,
			},
			&cli.StringFlag{
				Name:  "curl-file",
				Usage: "Path to a .sh file with a cURL command whose headers are sent with every request",
			},
		},
		Before:         r.Configure,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// Configure loads the config file when present and applies global flags.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configPath = path
		r.logger.Debug("loaded config", "path", path)
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	headers, err := shared.ParseHeaders(cmd.StringSlice("header"))
	if err != nil {
		return ctx, err
	}
	if file := cmd.String("curl-file"); file != "" {
		curl, err := shared.ParseCurlFile(file)
		if err != nil {
			return ctx, fmt.Errorf("failed to parse cURL file: %w", err)
		}
		headers.Merge(curl)
	}
	r.headers = headers

	r.init()
	return ctx, nil
}
