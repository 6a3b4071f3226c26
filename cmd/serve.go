package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/topten/internal/server"
	"github.com/desertthunder/topten/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web app until the context is canceled.
//
// SECRET_KEY and API_KEY must both be set; the check happens before the database is opened.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("host") {
		r.config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = cmd.Int("port")
	}

	if err := r.config.ValidateServer(); err != nil {
		return err
	}

	lib, err := r.movieLibrary(ctx, true)
	if err != nil {
		return err
	}

	opts := web.Options{
		Library:  lib,
		Sessions: server.NewSessions(r.config.Server.SecretKey, r.config.Server.SecureCookies, r.logger),
		Logger:   r.logger,
	}
	if r.db != nil {
		opts.DB = r.db
	}

	app, err := web.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create web app: %w", err)
	}

	open := cmd.Bool("open")
	ready := func(addr string) {
		url := "http://" + addr
		r.writePlain("Serving on %s\n", url)
		if open {
			if err := r.openBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "error", err)
			}
		}
	}

	srv := server.NewHTTPServer(r.config.Server.Addr(), app.Handler())
	return server.Serve(ctx, srv, r.logger, ready)
}
