// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package page

import "testing"

func TestVisibility(t *testing.T) {
	v := NewVisibility(true)
	ch, cancel := v.Subscribe()
	defer cancel()

	v.Set(true)
	select {
	case got := <-ch:
		t.Fatalf("unexpected notification %v for an unchanged state", got)
	default:
	}

	v.Set(false)
	v.Set(true)
	// Only the latest state is kept for a subscriber that has not read yet.
	if got := <-ch; got != true {
		t.Errorf("notification = %v, want true", got)
	}
	if !v.Visible() {
		t.Error("Visible() = false, want true")
	}

	cancel()
	v.Set(false)
	select {
	case got := <-ch:
		t.Errorf("notification %v after cancel", got)
	default:
	}
}
