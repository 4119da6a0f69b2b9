// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package page

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/render"
)

// Marker attributes.
const (
	AttrSlot        = "data-reactbar-id"
	AttrPlaceholder = "data-reactbar-placeholder"
	AttrBar         = "data-reactbar-bar"
	AttrSkeleton    = "data-reactbar-skeleton"
	AttrProvenance  = "data-provenance"
	AttrHighlight   = "data-highlight"
	AttrCategory    = "data-category"
)

// Classes the bar template emits.
const (
	ClassCompact = "reactbar-compact"
	ClassCount   = "count"
)

// Document is an Adapter over an in-memory HTML tree. Safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

var _ Adapter = (*Document)(nil)

// Parse reads a host page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString reads a host page from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the current page.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String returns the current page as HTML.
func (d *Document) String() string {
	var sb strings.Builder
	_ = d.Render(&sb)
	return sb.String()
}

// EntityIDs implements Adapter. Duplicate and malformed slot IDs are skipped.
func (d *Document) EntityIDs() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[int64]bool)
	var ids []int64
	walk(d.root, func(n *html.Node) bool {
		if v, ok := getAttr(n, AttrSlot); ok {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return true
	})
	return ids
}

// AttachBatch implements Adapter. A fragment without a slot does not stop
// the rest of the batch; every miss is reported in the joined error.
func (d *Document) AttachBatch(bars, skeletons map[int64]*render.Fragment) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range findAll(d.root, func(n *html.Node) bool { return hasAttr(n, AttrPlaceholder) }) {
		n.Parent.RemoveChild(n)
	}

	var errs []error
	var activate []*render.Fragment
	for _, group := range []map[int64]*render.Fragment{bars, skeletons} {
		for id, frag := range group {
			if err := d.replaceLocked(id, frag); err != nil {
				errs = append(errs, err)
				continue
			}
			activate = append(activate, frag)
		}
	}
	for _, frag := range activate {
		if frag.Activate != nil {
			if err := frag.Activate(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Replace implements Adapter.
func (d *Document) Replace(id int64, frag *render.Fragment) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.replaceLocked(id, frag); err != nil {
		return err
	}
	if frag.Activate != nil {
		return frag.Activate()
	}
	return nil
}

// replaceLocked empties the slot for id of bars and skeletons and appends
// frag. Caller holds mu.
func (d *Document) replaceLocked(id int64, frag *render.Fragment) error {
	slot := d.slotLocked(id)
	if slot == nil {
		return fmt.Errorf("%w: %d", ErrNoSlot, id)
	}
	for c := slot.FirstChild; c != nil; {
		next := c.NextSibling
		if hasAttr(c, AttrBar) || hasAttr(c, AttrSkeleton) {
			slot.RemoveChild(c)
		}
		c = next
	}
	if frag.Root.Parent != nil {
		frag.Root.Parent.RemoveChild(frag.Root)
	}
	slot.AppendChild(frag.Root)
	return nil
}

// SetProvenance implements Adapter.
func (d *Document) SetProvenance(id int64, p models.Provenance) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	bar := d.barLocked(id)
	if bar == nil {
		return fmt.Errorf("%w: %d", ErrNoBar, id)
	}
	setAttr(bar, AttrProvenance, string(p))
	return nil
}

// Provenance implements Adapter.
func (d *Document) Provenance(id int64) (models.Provenance, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	bar := d.barLocked(id)
	if bar == nil {
		return "", false
	}
	v, ok := getAttr(bar, AttrProvenance)
	return models.Provenance(v), ok
}

// SetControlsEnabled implements Adapter.
func (d *Document) SetControlsEnabled(id int64, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	bar := d.barLocked(id)
	if bar == nil {
		return fmt.Errorf("%w: %d", ErrNoBar, id)
	}
	for _, b := range controls(bar) {
		if enabled {
			removeAttr(b, "disabled")
		} else {
			setAttr(b, "disabled", "")
		}
	}
	return nil
}

// SetSelection implements Adapter.
func (d *Document) SetSelection(id int64, selected []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	bar := d.barLocked(id)
	if bar == nil {
		return fmt.Errorf("%w: %d", ErrNoBar, id)
	}
	want := make(map[string]bool, len(selected))
	for _, c := range selected {
		want[c] = true
	}
	for _, b := range controls(bar) {
		key, _ := getAttr(b, AttrCategory)
		setAttr(b, "aria-pressed", strconv.FormatBool(want[key]))
		setClass(b, "selected", want[key])
	}
	return nil
}

// ClearHighlights implements Adapter. A missing bar is not an error; the
// bar may have been replaced since the highlight was scheduled.
//
// A compact bar only shows positive categories, so a highlighted control
// with no count (a disappeared category) is removed along with its marker.
func (d *Document) ClearHighlights(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	bar := d.barLocked(id)
	if bar == nil {
		return nil
	}
	if hasClass(bar, ClassCompact) {
		for _, b := range controls(bar) {
			if hasAttr(b, AttrHighlight) && findFirst(b, func(n *html.Node) bool { return hasClass(n, ClassCount) }) == nil {
				b.Parent.RemoveChild(b)
			}
		}
	}
	walk(bar, func(n *html.Node) bool {
		removeAttr(n, AttrHighlight)
		return true
	})
	return nil
}

// RemoveSkeletons implements Adapter.
func (d *Document) RemoveSkeletons() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	skeletons := findAll(d.root, func(n *html.Node) bool { return hasAttr(n, AttrSkeleton) })
	for _, n := range skeletons {
		n.Parent.RemoveChild(n)
	}
	return len(skeletons)
}

// Highlights returns category -> highlight kind for one bar.
func (d *Document) Highlights(id int64) map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string)
	if bar := d.barLocked(id); bar != nil {
		for _, b := range controls(bar) {
			if kind, ok := getAttr(b, AttrHighlight); ok {
				key, _ := getAttr(b, AttrCategory)
				out[key] = kind
			}
		}
	}
	return out
}

// Categories returns the categories of one bar that have a control.
func (d *Document) Categories(id int64) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	if bar := d.barLocked(id); bar != nil {
		for _, b := range controls(bar) {
			key, _ := getAttr(b, AttrCategory)
			out = append(out, key)
		}
	}
	return out
}

// EnabledControls returns the categories of one bar whose control is enabled.
func (d *Document) EnabledControls(id int64) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	if bar := d.barLocked(id); bar != nil {
		for _, b := range controls(bar) {
			if !hasAttr(b, "disabled") {
				key, _ := getAttr(b, AttrCategory)
				out = append(out, key)
			}
		}
	}
	return out
}

// Selection returns the categories of one bar marked as the viewer's own.
func (d *Document) Selection(id int64) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []string
	if bar := d.barLocked(id); bar != nil {
		for _, b := range controls(bar) {
			if v, _ := getAttr(b, "aria-pressed"); v == "true" {
				key, _ := getAttr(b, AttrCategory)
				out = append(out, key)
			}
		}
	}
	return out
}

// HasBar reports whether a bar for id is attached.
func (d *Document) HasBar(id int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.barLocked(id) != nil
}

// HasSkeleton reports whether a skeleton for id is attached.
func (d *Document) HasSkeleton(id int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	slot := d.slotLocked(id)
	return slot != nil && findFirst(slot, func(n *html.Node) bool { return hasAttr(n, AttrSkeleton) }) != nil
}

// HasPlaceholder reports whether the batch placeholder is still present.
func (d *Document) HasPlaceholder() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return findFirst(d.root, func(n *html.Node) bool { return hasAttr(n, AttrPlaceholder) }) != nil
}

func (d *Document) slotLocked(id int64) *html.Node {
	want := strconv.FormatInt(id, 10)
	return findFirst(d.root, func(n *html.Node) bool {
		v, ok := getAttr(n, AttrSlot)
		return ok && v == want
	})
}

func (d *Document) barLocked(id int64) *html.Node {
	slot := d.slotLocked(id)
	if slot == nil {
		return nil
	}
	return findFirst(slot, func(n *html.Node) bool { return hasAttr(n, AttrBar) })
}
