// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

// Package diff classifies how the per-category counts of one entity moved
// between two snapshots.
//
// Every category falls into exactly one of four classes:
//
//	unchanged    equal counts, including zero -> zero
//	changed      positive before and after, counts differ
//	appeared     zero or absent before, positive after
//	disappeared  positive before, zero or absent after
//
// Compute is pure and never mutates its inputs.
package diff

import (
	"sort"

	"github.com/tomtom215/reactbar/internal/models"
)

// Kind is the class of a category that moved.
type Kind string

const (
	KindChanged     Kind = "changed"
	KindAppeared    Kind = "appeared"
	KindDisappeared Kind = "disappeared"
)

// Result holds the disjoint, sorted category sets of one comparison.
type Result struct {
	Changed     []string
	Appeared    []string
	Disappeared []string
	HasChanges  bool
}

// Compute compares before with after. A nil snapshot is all zero.
func Compute(before, after models.Snapshot) Result {
	var r Result

	for cat := range union(before, after) {
		b, a := before.Count(cat), after.Count(cat)
		switch {
		case b == a:
		case b > 0 && a > 0:
			r.Changed = append(r.Changed, cat)
		case a > 0:
			r.Appeared = append(r.Appeared, cat)
		default:
			r.Disappeared = append(r.Disappeared, cat)
		}
	}

	sort.Strings(r.Changed)
	sort.Strings(r.Appeared)
	sort.Strings(r.Disappeared)
	r.HasChanges = len(r.Changed)+len(r.Appeared)+len(r.Disappeared) > 0
	return r
}

// Marks returns category -> kind for every category in the result.
func (r Result) Marks() map[string]Kind {
	marks := make(map[string]Kind, len(r.Changed)+len(r.Appeared)+len(r.Disappeared))
	for _, c := range r.Changed {
		marks[c] = KindChanged
	}
	for _, c := range r.Appeared {
		marks[c] = KindAppeared
	}
	for _, c := range r.Disappeared {
		marks[c] = KindDisappeared
	}
	return marks
}

// Len returns the number of categories that moved.
func (r Result) Len() int {
	return len(r.Changed) + len(r.Appeared) + len(r.Disappeared)
}

func union(a, b models.Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}
