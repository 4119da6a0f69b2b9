// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package reactions is an in-memory counting service.

It stores one row per (viewer, entity, category) and aggregates rows into
per-category counts on read. It implements counting.Service directly, so the
render pipeline can run against it in-process, and NewRouter exposes it over
the JSON/HTTP protocol the counting.HTTPClient speaks.

# Scopes

Item scope entities are individual posts; the fetch response carries the
viewer's own selection. Group scope entities are discussions registered with
RegisterGroup; their counts are the sum over member posts and carry no
selection.

# Toggle Modes

With multi-react enabled a viewer may hold any number of categories on one
post; toggling a held category removes it. With multi-react disabled a
viewer holds at most one category and toggling a different one replaces it.

# Permissions

Anonymous viewers (user ID 0) and views configured with can_react=false get
counting.ErrNotPermitted on toggle. Categories outside the configured emoji
set get counting.ErrInvalidCategory.
*/
package reactions
