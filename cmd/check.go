package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/desertthunder/hlsx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const usageExitCode = 2

// CheckBandwidths compares each playlist's variant ladder against the expected profile.
func (r *Runner) CheckBandwidths(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.checkProfile(cmd)
	if err != nil {
		return err
	}

	urls, err := r.targets(cmd, profile.URLs)
	if err != nil {
		return err
	}

	report, err := r.runCheck(ctx, cmd, urls, tasks.CheckOpts{Kind: models.KindBandwidths, Profile: profile})
	var cfgErr *ladder.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		r.writePlain("%s: Invalid bandwidth value: %s is not an integer\n", ladder.Critical, cfgErr.Value)
		return cli.Exit("", ladder.Critical.ExitCode())
	case errors.Is(err, shared.ErrInvalidInput):
		return cli.Exit(err.Error(), usageExitCode)
	case report == nil:
		return err
	}
	return r.writeReport(cmd, report)
}

// CheckAvailability probes every variant playlist referenced by each master playlist.
func (r *Runner) CheckAvailability(ctx context.Context, cmd *cli.Command) error {
	urls, err := r.targets(cmd, nil)
	if err != nil {
		return err
	}

	report, err := r.runCheck(ctx, cmd, urls, tasks.CheckOpts{Kind: models.KindAvailability})
	if report == nil {
		return err
	}
	return r.writeReport(cmd, report)
}

// checkProfile resolves the expected profile from --profile or --bandwidths, with flag overrides applied.
func (r *Runner) checkProfile(cmd *cli.Command) (models.Profile, error) {
	var profile models.Profile
	switch name := cmd.String("profile"); {
	case name != "":
		p, err := r.config.Profile(name)
		if err != nil {
			return profile, cli.Exit(err.Error(), usageExitCode)
		}
		profile = p
	case cmd.IsSet("bandwidths"):
		profile = models.Profile{Name: "adhoc"}
	default:
		return profile, cli.Exit(fmt.Sprintf("%v: --bandwidths or --profile", shared.ErrMissingArgument), usageExitCode)
	}

	if cmd.IsSet("bandwidths") {
		profile.Bandwidths = cmd.String("bandwidths")
	}
	if cmd.IsSet("variance") {
		profile.VariancePercent = cmd.Float("variance")
	}
	if cmd.IsSet("unordered") {
		profile.Unordered = cmd.Bool("unordered")
	}
	return profile, nil
}

// targets returns the URLs to check. --file wins over the url argument; fallback is used when both are absent.
func (r *Runner) targets(cmd *cli.Command, fallback []string) ([]string, error) {
	if path := cmd.String("file"); path != "" {
		urls, err := shared.ReadURLFile(path)
		if err != nil {
			return nil, cli.Exit(err.Error(), usageExitCode)
		}
		if len(urls) == 0 {
			return nil, cli.Exit(fmt.Sprintf("no URLs found in %s", path), usageExitCode)
		}
		return urls, nil
	}

	if u := cmd.StringArg("url"); u != "" {
		return []string{u}, nil
	}
	if len(fallback) > 0 {
		return fallback, nil
	}
	return nil, cli.Exit(fmt.Sprintf("%v: url argument or --file", shared.ErrMissingArgument), usageExitCode)
}

// runCheck runs the engine, logging progress at debug level and recording results when asked.
//
// An interrupted run still returns its partial report.
func (r *Runner) runCheck(ctx context.Context, cmd *cli.Command, urls []string, opts tasks.CheckOpts) (*tasks.CheckReport, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Bool("record") {
		repo, closeDB, err := r.openRepository()
		if err != nil {
			return nil, err
		}
		defer closeDB()
		r.engine.SetRecorder(repo)
		defer r.engine.SetRecorder(nil)
	}

	opts.Workers = r.config.Check.Workers
	if w := cmd.Int("workers"); w > 0 {
		opts.Workers = int(w)
	}
	opts.RateLimit = r.config.Check.RateLimit

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	report, err := r.engine.Run(ctx, progress, urls, opts)
	close(progress)
	<-done

	if err != nil && report != nil {
		r.logger.Warn("check run incomplete", "error", err)
	}
	return report, err
}

// writeReport prints the report and converts its severity to the process exit code.
func (r *Runner) writeReport(cmd *cli.Command, report *tasks.CheckReport) error {
	if cmd.Bool("json") {
		data, err := formatter.ReportJSON(report, cmd.Bool("pretty"))
		if err != nil {
			return err
		}
		if err := r.writeBytes(data); err != nil {
			return err
		}
	} else {
		verbose := cmd.Bool("verbose")
		withTimestamp := verbose || cmd.Bool("timestamp")
		for _, res := range report.Results {
			if err := r.writePlain("%s\n", formatter.Brief(res, withTimestamp, r.now())); err != nil {
				return err
			}
			if !verbose {
				continue
			}
			for _, line := range formatter.Findings(res) {
				if err := r.writePlain("%s\n", line); err != nil {
					return err
				}
			}
		}
	}

	r.logger.Debug("check complete", "run", report.RunID, "summary", formatter.Summary(report))
	if code := report.Severity.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}
