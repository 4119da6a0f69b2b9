// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package models

// ItemState is the live state of one entity as returned by a batch fetch.
//
// Selected holds the viewer's own categories. It is only populated for item
// scope and is never written to the local store.
type ItemState struct {
	ID       int64    `json:"id"`
	Counts   Snapshot `json:"counts"`
	Selected []string `json:"selected,omitempty"`
}

// IsSelected reports whether the viewer has reacted with category.
func (s *ItemState) IsSelected(category string) bool {
	for _, c := range s.Selected {
		if c == category {
			return true
		}
	}
	return false
}

// ToggleAction is the effect a toggle had on the viewer's selections.
type ToggleAction string

const (
	ToggleAdded    ToggleAction = "added"
	ToggleRemoved  ToggleAction = "removed"
	ToggleReplaced ToggleAction = "replaced"
)

// ToggleResult is the counting service's answer to a toggle.
type ToggleResult struct {
	Action   ToggleAction `json:"action"`
	ItemID   int64        `json:"item_id"`
	Selected []string     `json:"selected"`
	Counts   Snapshot     `json:"counts"`
}

// State converts the result into the ItemState used to rebuild a bar.
func (r *ToggleResult) State() ItemState {
	return ItemState{ID: r.ItemID, Counts: r.Counts.Clone(), Selected: append([]string(nil), r.Selected...)}
}
