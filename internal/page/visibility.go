// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package page

import "sync"

// Visibility is a settable page visibility signal. The zero value is
// hidden; use NewVisibility to choose the initial state.
type Visibility struct {
	mu      sync.Mutex
	visible bool
	nextID  int
	subs    map[int]chan bool
}

// NewVisibility creates a signal with the given initial state.
func NewVisibility(visible bool) *Visibility {
	return &Visibility{visible: visible, subs: make(map[int]chan bool)}
}

// Visible reports the current state.
func (v *Visibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Set changes the state and notifies subscribers. Setting the current state
// again is a no-op.
func (v *Visibility) Set(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.visible == visible {
		return
	}
	v.visible = visible
	for _, ch := range v.subs {
		// Keep only the latest state for slow subscribers.
		select {
		case <-ch:
		default:
		}
		ch <- visible
	}
}

// Subscribe returns a channel receiving every state change and a function
// that ends the subscription.
func (v *Visibility) Subscribe() (<-chan bool, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.subs == nil {
		v.subs = make(map[int]chan bool)
	}
	id := v.nextID
	v.nextID++
	ch := make(chan bool, 1)
	v.subs[id] = ch
	return ch, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}
