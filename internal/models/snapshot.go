// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package models

import "sort"

// Snapshot maps a reaction category to its aggregated count.
//
// Counts are never negative. An absent category and a zero count are
// equivalent; Normalize drops zero entries so that the two forms compare
// equal. A nil Snapshot is a valid, all-zero snapshot.
type Snapshot map[string]int

// Count returns the count for category, or 0 when absent.
func (s Snapshot) Count(category string) int {
	if n := s[category]; n > 0 {
		return n
	}
	return 0
}

// Normalize returns a copy without zero or negative entries.
func (s Snapshot) Normalize() Snapshot {
	out := make(Snapshot, len(s))
	for k, n := range s {
		if n > 0 {
			out[k] = n
		}
	}
	return out
}

// Clone returns an independent copy. Clone of nil is nil.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, n := range s {
		out[k] = n
	}
	return out
}

// Equal reports whether both snapshots have the same positive counts.
func (s Snapshot) Equal(other Snapshot) bool {
	a, b := s.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}

// Total returns the sum of all positive counts.
func (s Snapshot) Total() int {
	total := 0
	for _, n := range s {
		if n > 0 {
			total += n
		}
	}
	return total
}

// HasPositive reports whether any category has a positive count.
func (s Snapshot) HasPositive() bool {
	for _, n := range s {
		if n > 0 {
			return true
		}
	}
	return false
}

// Categories returns the categories with a positive count, sorted.
func (s Snapshot) Categories() []string {
	keys := make([]string, 0, len(s))
	for k, n := range s {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
