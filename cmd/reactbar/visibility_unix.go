// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/page"
)

// visibilityToggle flips page visibility on SIGUSR1 so --watch can exercise
// poll suspension without a browser.
type visibilityToggle struct {
	vis *page.Visibility
}

func newVisibilityToggle(vis *page.Visibility) *visibilityToggle {
	return &visibilityToggle{vis: vis}
}

func (t *visibilityToggle) Serve(ctx context.Context) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sig:
			visible := !t.vis.Visible()
			t.vis.Set(visible)
			logging.Info().Bool("visible", visible).Msg("Page visibility changed")
		}
	}
}

func (t *visibilityToggle) String() string {
	return "visibility-toggle"
}
