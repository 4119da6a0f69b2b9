// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package pipeline paints reaction bars from the local store and reconciles
them with the counting service.

A Session is created once per page view. It owns the last-rendered
snapshot of every entity, the in-flight toggle flag, the poller and the
highlight timers, and serialises every page mutation behind one mutex.
Network, storage and rendering calls are made outside that mutex.

# Initial Load

	1. read cached snapshots for every entity
	2. render cache bars off-page: inert, no selection
	3. attach all cache bars and skeletons in one page update
	4. one batched fetch for every entity
	5. diff cached against live; re-render changed bars with highlights,
	   flip unchanged bars to live, render uncached bars fresh
	6. remove leftover skeletons
	7. write every fresh snapshot back to the store
	8. start the poller

Highlights are cleared HighlightDuration after they were applied.

# Toggles

Toggle bypasses the batch path. The bar's controls are disabled, one toggle
call is made and the bar is rebuilt from the response. Only one toggle may
be in flight per session, and a poll tick never runs while one is.
*/
package pipeline
