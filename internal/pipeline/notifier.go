// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package pipeline

import (
	"context"

	"github.com/tomtom215/reactbar/internal/logging"
)

// Operation names the user action a notification is about.
type Operation string

const (
	OpLoad   Operation = "load"
	OpToggle Operation = "toggle"
)

// Notifier surfaces failures to the viewer.
type Notifier interface {
	Notify(ctx context.Context, op Operation, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, op Operation, err error)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, op Operation, err error) { f(ctx, op, err) }

// LogNotifier writes notifications to the log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(ctx context.Context, op Operation, err error) {
	msg := "Reactions could not be loaded"
	if op == OpToggle {
		msg = "Reaction could not be saved"
	}
	logging.Ctx(ctx).Warn().Err(err).Str("operation", string(op)).Msg(msg)
}
