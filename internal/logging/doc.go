// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

// Package logging provides centralized zerolog-based structured logging for Reactbar.
//
// Every package logs through the package-level helpers instead of holding its
// own logger. Page sessions attach their session ID to a context so that
// cache, fetch and poll messages for one view can be correlated.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("entities", n).Msg("Painted cached bars")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Batch fetch failed")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Suture Integration
//
// Suture v4 reports supervisor events through log/slog. NewSlogLogger returns
// an slog.Logger whose handler writes to the zerolog backend, so supervisor
// restarts and backoffs land in the same stream as everything else:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//	spec := suture.Spec{EventHook: handler.MustHook()}
package logging
