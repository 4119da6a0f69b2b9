// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package render

import (
	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/diff"
	"github.com/tomtom215/reactbar/internal/models"
)

// Template names.
const (
	TemplateBar      = "reactbar/bar"
	TemplateSkeleton = "reactbar/skeleton"
)

// Category is one emoji control inside a bar.
type Category struct {
	Key         string
	Glyph       string
	Count       int
	Selected    bool
	Interactive bool
	Highlight   diff.Kind
}

// Context is the data a bar template is executed with.
type Context struct {
	EntityID    int64
	Provenance  models.Provenance
	Categories  []Category
	Total       int
	HasPositive bool
	Compact     bool
}

// Interactive reports whether any control in the bar is enabled.
func (c *Context) Interactive() bool {
	for i := range c.Categories {
		if c.Categories[i].Interactive {
			return true
		}
	}
	return false
}

// Bar describes the state one bar is built from.
type Bar struct {
	ID         int64
	Counts     models.Snapshot
	Selected   []string
	Provenance models.Provenance
	Marks      map[string]diff.Kind
}

// NewBarContext builds the template context for bar under view.
//
// A cache bar never carries a selection and never has an enabled control.
// A live bar is interactive when the view allows toggling. Compact mode
// keeps positive and highlighted categories only; expanded mode keeps every
// configured category. Both keep the configured order.
func NewBarContext(view *config.ViewConfig, bar Bar) Context {
	live := bar.Provenance == models.ProvenanceLive
	interactive := live && view.Toggleable()

	selected := make(map[string]bool, len(bar.Selected))
	if live {
		for _, c := range bar.Selected {
			selected[c] = true
		}
	}

	ctx := Context{
		EntityID:    bar.ID,
		Provenance:  bar.Provenance,
		Total:       bar.Counts.Total(),
		HasPositive: bar.Counts.HasPositive(),
		Compact:     view.Compact,
		Categories:  make([]Category, 0, len(view.Emojis)),
	}
	for _, e := range view.Emojis {
		count := bar.Counts.Count(e.Key)
		mark := bar.Marks[e.Key]
		if view.Compact && count == 0 && mark == "" {
			continue
		}
		ctx.Categories = append(ctx.Categories, Category{
			Key:         e.Key,
			Glyph:       e.Glyph,
			Count:       count,
			Selected:    selected[e.Key],
			Interactive: interactive,
			Highlight:   mark,
		})
	}
	return ctx
}

// NewSkeletonContext builds the context for a loading placeholder.
func NewSkeletonContext(view *config.ViewConfig, id int64) Context {
	return Context{EntityID: id, Compact: view.Compact}
}
