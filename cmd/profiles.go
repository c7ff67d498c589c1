package main

import (
	"context"
	"io"

	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ProfilesList writes timestamp, url, bandwidths and resolutions of each playlist as a CSV row.
//
// Playlists that cannot be profiled are logged and skipped.
func (r *Runner) ProfilesList(ctx context.Context, cmd *cli.Command) error {
	urls, err := r.targets(cmd, nil)
	if err != nil {
		return err
	}

	report, err := r.runCheck(ctx, cmd, urls, tasks.CheckOpts{Kind: models.KindProfiles})
	if report == nil {
		return err
	}

	var out io.Writer = r.output
	if path := cmd.String("output"); path != "" {
		f, err := formatter.OpenProfileOutput(path, cmd.Bool("append"))
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	failed, err := formatter.WriteProfiles(out, report, r.now())
	if err != nil {
		return err
	}
	for _, res := range failed {
		r.logger.Error("failed to profile playlist", "url", res.URL, "severity", res.Severity, "message", res.Message)
	}

	if code := report.Severity.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// ProfilesShow prints the configured profiles.
func (r *Runner) ProfilesShow(ctx context.Context, cmd *cli.Command) error {
	names := r.config.ProfileNames()

	if cmd.Bool("json") {
		profiles := make([]models.Profile, 0, len(names))
		for _, name := range names {
			profiles = append(profiles, r.config.Profiles[name])
		}
		return r.writeJSON(profiles, true)
	}

	for _, name := range names {
		p := r.config.Profiles[name]
		r.writePlain("%s\n", name)
		r.writePlain("  bandwidths: %s\n", p.Bandwidths)
		r.writePlain("  variance:   %g%%\n", p.VariancePercent)
		r.writePlain("  unordered:  %t\n", p.Unordered)
		if len(p.URLs) > 0 {
			r.writePlain("  urls:       %d\n", len(p.URLs))
		}
		if err := p.Validate(); err != nil {
			r.writePlain("  invalid:    %v\n", err)
		}
	}
	return nil
}
