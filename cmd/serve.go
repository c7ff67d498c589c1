package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/hlsx/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP check endpoint until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	profile := cmd.String("profile")
	if _, err := r.config.Profile(profile); err != nil {
		return cli.Exit(err.Error(), usageExitCode)
	}

	if cmd.IsSet("host") {
		r.config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := r.handler(profile)
	r.logger.Debug("registered routes", "routes", router.Routes(), "profile", profile)
	return server.ListenAndServe(ctx, r.config.Addr(), router, r.logger)
}

// handler builds the check router with request logging and panic recovery.
func (r *Runner) handler(profile string) *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(server.NewCheckHandler(r.engine, r.config, profile))
	return router
}
