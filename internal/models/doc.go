// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package models defines the data structures shared across Reactbar.

Key Components:

  - Snapshot: category -> count mapping for one entity at one point in time.
    A missing category and a zero count mean the same thing everywhere.
  - EntityRef and CacheKey: the identity of a reaction bar and the collision
    free local store key derived from it.
  - ItemState: one entity's live counts plus the viewer's own selections.
  - ToggleResult: the outcome of a single toggle (added, removed, replaced).
  - Provenance: whether a rendered bar was painted from cache or verified live.
  - APIResponse / APIError: the JSON envelope of the reference counting server.

Thread Safety:

Snapshot is a map and is not safe for concurrent mutation. Functions that
hand a Snapshot to another goroutine or to the local store Clone it first.
*/
package models
