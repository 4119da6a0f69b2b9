// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/counting"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/page"
	"github.com/tomtom215/reactbar/internal/pipeline"
	"github.com/tomtom215/reactbar/internal/render"
	"github.com/tomtom215/reactbar/internal/store"
	"github.com/tomtom215/reactbar/internal/supervisor"
	"github.com/tomtom215/reactbar/internal/supervisor/services"
)

// flushInterval is how often --watch checks the page for changes.
const flushInterval = time.Second

type renderFlags struct {
	PagePath string
	OutPath  string
	Watch    bool
}

func (f *renderFlags) AsCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "page",
			Usage:       "Host HTML page containing data-reactbar-id slots.",
			Required:    true,
			Destination: &f.PagePath,
		},
		&cli.StringFlag{
			Name:        "out",
			Value:       "-",
			Usage:       "Where to write the rendered page. - is stdout.",
			Destination: &f.OutPath,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Usage:       "Keep polling and rewriting the output until interrupted.",
			Destination: &f.Watch,
		},
	}
}

func renderCommand(configPath *string) *cli.Command {
	var flags renderFlags
	return &cli.Command{
		Name:        "render",
		Usage:       "Paint reaction bars into a host page",
		Description: "Paints cached bars, reconciles them against the counting service and writes the page.",
		Flags:       flags.AsCliFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			r, err := newRenderRun(cfg, flags)
			if err != nil {
				return err
			}
			defer r.close()

			if flags.Watch {
				return r.watch(ctx)
			}
			return r.once(ctx)
		},
	}
}

// renderRun holds the collaborators of one render command.
type renderRun struct {
	cfg     *config.Config
	store   *store.LocalStore
	doc     *page.Document
	vis     *page.Visibility
	breaker *counting.CircuitBreakerClient
	session *pipeline.Session
	out     *pageWriter
}

func newRenderRun(cfg *config.Config, flags renderFlags) (*renderRun, error) {
	f, err := os.Open(flags.PagePath)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	doc, err := page.Parse(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", flags.PagePath, err)
	}

	renderer, err := render.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	r := &renderRun{
		cfg:     cfg,
		store:   store.New(store.OpenerFor(cfg.Store), store.WithTTL(cfg.Store.TTL)),
		doc:     doc,
		vis:     page.NewVisibility(true),
		breaker: counting.NewCircuitBreakerClient(counting.NewHTTPClient(&cfg.Counting), counting.BreakerSettings{}),
		out:     newPageWriter(doc, flags.OutPath, flushInterval),
	}

	r.session, err = pipeline.NewSession(pipeline.Deps{
		Store:    r.store,
		Service:  r.breaker,
		Renderer: renderer,
		Page:     doc,
		Auth: counting.Auth{
			UserID: cfg.Counting.UserID,
			Token:  cfg.Counting.AuthToken,
		},
		Visibility: r.vis,
	}, &cfg.View)
	if err != nil {
		_ = r.store.Close()
		return nil, err
	}
	return r, nil
}

// once loads the page, writes it and exits. A failed fetch still writes the
// cache-painted page before the error is returned.
func (r *renderRun) once(ctx context.Context) error {
	loadErr := r.session.Load(ctx, nil)
	r.session.Close()

	if err := r.out.Flush(); err != nil {
		return err
	}
	logging.Info().
		Int("entities", len(r.doc.EntityIDs())).
		Str("breaker", r.breaker.State()).
		Msg("Page rendered")
	return loadErr
}

// watch runs the session under the supervisor tree until ctx ends.
func (r *renderRun) watch(ctx context.Context) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	if gc, ok := r.store.Backend().(store.GCRunner); ok {
		tree.AddDataService(store.NewMaintainer(gc, 0))
	}
	tree.AddSessionService(services.NewSessionService(r.session, func() {
		if err := r.out.Flush(); err != nil {
			logging.Warn().Err(err).Msg("Could not write rendered page")
		}
	}))
	tree.AddSessionService(r.out)
	tree.AddSessionService(newVisibilityToggle(r.vis))

	logging.Info().
		Str("session_id", r.session.ID()).
		Int("poll_interval_seconds", r.cfg.View.PollIntervalSeconds).
		Msg("Watching page")

	err = tree.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	reportUnstopped(tree)
	return err
}

func (r *renderRun) close() {
	r.session.Close()
	if err := r.store.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing local store")
	}
}
