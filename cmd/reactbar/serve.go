// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/reactions"
	"github.com/tomtom215/reactbar/internal/supervisor"
	"github.com/tomtom215/reactbar/internal/supervisor/services"
)

type serveFlags struct {
	SeedPath string
}

func (f *serveFlags) AsCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "JSON file with initial counts and group membership.",
			Destination: &f.SeedPath,
		},
	}
}

func serveCommand(configPath *string) *cli.Command {
	var flags serveFlags
	return &cli.Command{
		Name:        "serve",
		Usage:       "Run the reference counting service",
		Description: "Serves the in-memory counting service over HTTP until SIGINT or SIGTERM.",
		Flags:       flags.AsCliFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			svc := reactions.NewService(&cfg.View)
			if flags.SeedPath != "" {
				seed, err := readSeedFile(flags.SeedPath)
				if err != nil {
					return err
				}
				seed.apply(svc, &cfg.View)
				logging.Info().
					Int("items", len(seed.Items)).
					Int("groups", len(seed.Groups)).
					Msg("Seed data loaded")
			}

			srv := &http.Server{
				Addr: cfg.Server.Addr(),
				Handler: reactions.NewRouter(svc, reactions.RouterConfig{
					RateLimitRequests: cfg.Server.RateLimitRequests,
					RateLimitWindow:   cfg.Server.RateLimitWindow,
					AuthToken:         cfg.Counting.AuthToken,
				}),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
				ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
			})
			if err != nil {
				return err
			}
			tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.Info().
				Str("addr", srv.Addr).
				Str("component", cfg.View.Component).
				Str("item_type", cfg.View.ItemType).
				Bool("multi_react", cfg.View.MultiReact).
				Msg("Starting reference counting service")

			err = tree.Serve(ctx)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			reportUnstopped(tree)
			return err
		},
	}
}

func reportUnstopped(tree *supervisor.SupervisorTree) {
	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Could not build unstopped service report")
		return
	}
	for _, svc := range report {
		logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
	}
}
