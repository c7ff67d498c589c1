// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "File with one playlist URL per line (overrides the url argument)",
	}
}

func urlArgument() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "url", UsageText: "master playlist URL"}}
}

// outputFlags are shared by the check subcommands.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		fileFlag(),
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Print one line per finding (implies --timestamp)",
		},
		&cli.BoolFlag{
			Name:    "timestamp",
			Aliases: []string{"t"},
			Usage:   "Prefix each result with the time of the check",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the report as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.BoolFlag{
			Name:  "record",
			Usage: "Record results in the history database",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent playlist requests (default from config)",
		},
	}
}

// checkCommand handles bandwidth and availability checks
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check master playlists (exit codes: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN)",
		Commands: []*cli.Command{
			{
				Name:      "bandwidths",
				Aliases:   []string{"bw"},
				Usage:     "Compare a master playlist's variant bandwidths against an expected ladder",
				Arguments: urlArgument(),
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "bandwidths",
						Aliases: []string{"b"},
						Usage:   `Expected ladder in bits per second, e.g. "889000 3767000 741000" (required without --profile)`,
					},
					&cli.FloatFlag{
						Name:    "variance",
						Aliases: []string{"p"},
						Usage:   "Accept bandwidths within this percentage of the expected value",
					},
					&cli.BoolFlag{
						Name:    "unordered",
						Aliases: []string{"u"},
						Usage:   "Ignore variant order",
					},
					&cli.StringFlag{
						Name:  "profile",
						Usage: "Configured profile to check against",
					},
				}, outputFlags()...),
				Action: r.CheckBandwidths,
			},
			{
				Name:      "availability",
				Aliases:   []string{"av"},
				Usage:     "Verify every variant playlist of a master playlist is reachable",
				Arguments: urlArgument(),
				Flags:     outputFlags(),
				Action:    r.CheckAvailability,
			},
		},
	}
}

// profilesCommand handles observed and configured bandwidth profiles
func profilesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "Bandwidth profile operations",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "Write the observed bandwidths and resolutions of master playlists as CSV",
				Arguments: urlArgument(),
				Flags: []cli.Flag{
					fileFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "CSV output file (default stdout)",
					},
					&cli.BoolFlag{
						Name:    "append",
						Aliases: []string{"a"},
						Usage:   "Append to the output file instead of truncating it",
					},
				},
				Action: r.ProfilesList,
			},
			{
				Name:  "show",
				Usage: "Show configured profiles",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProfilesShow,
			},
		},
	}
}

// historyCommand handles recorded check results
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Recorded check results",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded results, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Only results for this playlist URL",
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Only results of this run ID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a recorded result with its findings",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded result",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
			{
				Name:  "ui",
				Usage: "Browse recorded results interactively",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 100,
					},
				},
				Action: r.HistoryUI,
			},
		},
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Show migration status without applying",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the new config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand runs the HTTP check endpoint.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve bandwidth checks over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Profile used when a request names none",
				Value: "default",
			},
		},
		Action: r.Serve,
	}
}
