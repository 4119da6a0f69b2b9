// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

//go:build !unix

package main

import (
	"context"

	"github.com/tomtom215/reactbar/internal/page"
)

// visibilityToggle is inert where SIGUSR1 does not exist; the page stays
// visible.
type visibilityToggle struct{}

func newVisibilityToggle(*page.Visibility) *visibilityToggle {
	return &visibilityToggle{}
}

func (t *visibilityToggle) Serve(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (t *visibilityToggle) String() string {
	return "visibility-toggle"
}
