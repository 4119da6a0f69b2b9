// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

// Package main is the reactbar command.
//
// Reactbar keeps per-post and per-thread emoji reaction bars on a discussion
// page in step with a counting service. Cached counts are painted first as
// inert bars, then the live counts are fetched in one batch, diffed against
// what was painted and applied with change highlights. While the page is
// visible a poller keeps refreshing.
//
// # Commands
//
//	reactbar serve   run the in-memory reference counting service
//	reactbar render  run the pipeline over a host HTML page
//
// # Examples
//
// Start the reference service with some seeded counts:
//
//	export HTTP_PORT=8337
//	reactbar serve --seed seed.json
//
// Render a page once, using a badger cache directory:
//
//	export COUNTING_URL=http://127.0.0.1:8337 STORE_PATH=/tmp/reactbar
//	reactbar render --page thread.html --out thread.rendered.html
//
// Keep the output current until interrupted. SIGUSR1 toggles page
// visibility, which suspends and resumes polling:
//
//	reactbar render --page thread.html --out thread.rendered.html --watch
//
// Configuration comes from defaults, an optional YAML file (--config or
// CONFIG_PATH) and environment variables; see package config.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/logging"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logging.Fatal().Err(err).Msg("reactbar failed")
	}
}

func newApp() *cli.App {
	var configPath string

	return &cli.App{
		Name:  "reactbar",
		Usage: "Discussion reaction cache and reconciliation engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "YAML configuration file. Overrides CONFIG_PATH.",
				EnvVars:     []string{"CONFIG_PATH"},
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			serveCommand(&configPath),
			renderCommand(&configPath),
		},
	}
}

// loadConfig loads configuration and initializes logging from it.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}
