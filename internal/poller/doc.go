// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package poller runs a refresh function on a fixed cadence for as long as a
view is open.

# Lifecycle

Start launches one goroutine per poller. An interval of zero or less means
polling is disabled and Start returns false. Stop is idempotent and waits
for the goroutine to exit. Serve lets a suture supervisor own the poller's
lifetime.

# Visibility

While the VisibilitySource reports the view hidden, the ticker is stopped
and no tick runs. When the view becomes visible again the tick runs once
immediately and the ticker restarts, so data is never more than one
interval stale when the viewer returns.

# Errors

Tick errors are logged at debug level and counted. They never stop later
ticks. A tick returning ErrSkip is counted as skipped instead.
*/
package poller
