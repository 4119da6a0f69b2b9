// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package page is the boundary between the render pipeline and the host page.

The pipeline never walks the page itself. It builds detached fragments with
the render package and hands them to an Adapter, which attaches, replaces
and removes them.

Document implements Adapter over a parsed HTML tree. It recognises these
markers:

	data-reactbar-id="N"         slot where the bar for entity N lives
	data-reactbar-placeholder    space reserved for the whole batch
	data-reactbar-bar="N"        a rendered bar (set by the bar template)
	data-reactbar-skeleton="N"   a loading placeholder for entity N
	data-provenance              "cache" or "live" on a bar
	data-highlight               transient change marker on a control
	button[data-category]        one emoji control; disabled when inert

Visibility is a settable visibility signal the poller subscribes to.
*/
package page
