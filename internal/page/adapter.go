// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package page

import (
	"errors"

	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/render"
)

// ErrNoSlot is returned when the page has no slot for an entity.
var ErrNoSlot = errors.New("no slot for entity")

// ErrNoBar is returned when an operation needs a bar that is not attached.
var ErrNoBar = errors.New("no bar attached for entity")

// Adapter applies pipeline output to the host page.
type Adapter interface {
	// EntityIDs lists the entities with a slot, in page order.
	EntityIDs() []int64

	// AttachBatch removes the batch placeholder, attaches every bar and
	// inserts every skeleton as one update. Fragments without a slot are
	// skipped and reported together in the returned error.
	AttachBatch(bars, skeletons map[int64]*render.Fragment) error

	// Replace swaps whatever the slot for id holds for frag.
	Replace(id int64, frag *render.Fragment) error

	SetProvenance(id int64, p models.Provenance) error
	Provenance(id int64) (models.Provenance, bool)

	// SetControlsEnabled enables or disables every control of one bar.
	SetControlsEnabled(id int64, enabled bool) error

	// SetSelection marks exactly the given categories as the viewer's own.
	SetSelection(id int64, selected []string) error

	// ClearHighlights removes change markers from one bar. In compact mode
	// it also drops the zero-count controls kept only for their marker.
	ClearHighlights(id int64) error

	// RemoveSkeletons removes every skeleton still on the page.
	RemoveSkeletons() int
}
