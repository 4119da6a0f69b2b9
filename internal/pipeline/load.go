// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package pipeline

import (
	"context"
	"fmt"

	"github.com/tomtom215/reactbar/internal/diff"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/metrics"
	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/poller"
	"github.com/tomtom215/reactbar/internal/render"
)

// Load paints every entity from the store, reconciles with the counting
// service and starts the poller. An empty ids means every entity the page
// has a slot for.
//
// ctx also bounds the poller, so it should live as long as the view.
// A failed fetch is reported through the Notifier once and returned; bars
// painted from the store stay on the page.
func (s *Session) Load(ctx context.Context, ids []int64) error {
	ctx = s.ctx(ctx)
	if len(ids) == 0 {
		ids = s.deps.Page.EntityIDs()
	}
	logger := logging.Ctx(ctx)
	defer s.startPoller(ctx)

	if len(ids) == 0 {
		logger.Debug().Msg("No reaction slots on page")
		return nil
	}

	// 1. cache read, completed before the fetch is issued
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	found := s.deps.Store.GetMany(ctx, keys)

	cached := make(map[int64]models.Snapshot)
	var uncached []int64
	for i, id := range ids {
		if snap := found[keys[i]]; snap != nil {
			cached[id] = snap
		} else {
			uncached = append(uncached, id)
		}
	}

	// 2. off-page render
	bars := make(map[int64]*render.Fragment, len(cached))
	for id, snap := range cached {
		frag, err := s.renderBar(ctx, render.Bar{ID: id, Counts: snap, Provenance: models.ProvenanceCache})
		if err != nil {
			logger.Warn().Err(err).Int64("entity_id", id).Msg("Cached bar could not be rendered")
			delete(cached, id)
			uncached = append(uncached, id)
			continue
		}
		bars[id] = frag
	}
	skeletons := make(map[int64]*render.Fragment, len(uncached))
	for _, id := range uncached {
		frag, err := s.renderSkeleton(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Int64("entity_id", id).Msg("Skeleton could not be rendered")
			continue
		}
		skeletons[id] = frag
	}

	// 3. single page update
	s.mu.Lock()
	seq := s.toggleSeq
	if err := s.deps.Page.AttachBatch(bars, skeletons); err != nil {
		logger.Warn().Err(err).Msg("Batch attach incomplete")
	}
	for id, snap := range cached {
		s.rendered[id] = snap
	}
	s.mu.Unlock()

	logger.Debug().Int("cached", len(cached)).Int("uncached", len(uncached)).Msg("Painted reactions from cache")

	// 4. live fetch
	items, err := s.deps.Service.Fetch(ctx, s.fetchRequest(ids))
	if err != nil {
		s.mu.Lock()
		s.deps.Page.RemoveSkeletons()
		s.mu.Unlock()
		s.deps.Notifier.Notify(ctx, OpLoad, err)
		return fmt.Errorf("fetch reactions: %w", err)
	}

	// 5-7.
	s.reconcile(ctx, ids, items, cached, seq)
	return nil
}

// Refresh is one poll tick. It returns poller.ErrSkip while a toggle is in
// flight.
func (s *Session) Refresh(ctx context.Context) error {
	ctx = s.ctx(ctx)

	s.mu.Lock()
	if s.toggling || s.closed {
		s.mu.Unlock()
		return poller.ErrSkip
	}
	seq := s.toggleSeq
	s.mu.Unlock()

	ids := s.deps.Page.EntityIDs()
	if len(ids) == 0 {
		return nil
	}
	items, err := s.deps.Service.Fetch(ctx, s.fetchRequest(ids))
	if err != nil {
		return fmt.Errorf("refresh reactions: %w", err)
	}

	s.mu.Lock()
	// A toggle that started meanwhile owns its bar's state.
	if s.toggling || s.toggleSeq != seq {
		s.mu.Unlock()
		return poller.ErrSkip
	}
	baseline := make(map[int64]models.Snapshot, len(s.rendered))
	for id, snap := range s.rendered {
		baseline[id] = snap
	}
	s.mu.Unlock()

	s.reconcile(ctx, ids, items, baseline, seq)
	return nil
}

// barUpdate is the planned page change for one entity.
type barUpdate struct {
	id       int64
	frag     *render.Fragment
	marks    map[string]diff.Kind
	selected []string
	counts   models.Snapshot
}

// reconcile applies live items against baseline, writes the store and
// advances the rendered baseline. seq is the toggleSeq the items were
// fetched under; an entity toggled since then keeps the toggle's bar and
// cache entry.
func (s *Session) reconcile(ctx context.Context, ids []int64, items map[int64]models.ItemState, baseline map[int64]models.Snapshot, seq uint64) {
	logger := logging.Ctx(ctx)
	var updates []barUpdate

	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			continue
		}
		counts := item.Counts.Normalize()
		up := barUpdate{id: id, selected: item.Selected, counts: counts}

		before, known := baseline[id]
		if known {
			result := diff.Compute(before, counts)
			if !result.HasChanges {
				updates = append(updates, up)
				continue
			}
			up.marks = result.Marks()
		}

		frag, err := s.renderBar(ctx, render.Bar{
			ID:         id,
			Counts:     counts,
			Selected:   item.Selected,
			Provenance: models.ProvenanceLive,
			Marks:      up.marks,
		})
		if err != nil {
			logger.Warn().Err(err).Int64("entity_id", id).Msg("Live bar could not be rendered")
			continue
		}
		up.frag = frag
		updates = append(updates, up)
	}

	fresh := make(map[string]models.Snapshot, len(items))
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for _, up := range updates {
		if s.overtakenLocked(up.id, seq) {
			logger.Debug().Int64("entity_id", up.id).Msg("Toggle overtook reconcile, bar kept")
			continue
		}
		if up.frag == nil && !s.flipLocked(ctx, up) {
			// No bar to flip; build one.
			frag, err := s.renderBar(ctx, render.Bar{
				ID: up.id, Counts: up.counts, Selected: up.selected, Provenance: models.ProvenanceLive,
			})
			if err != nil {
				continue
			}
			up.frag = frag
		}
		if up.frag != nil {
			if err := s.deps.Page.Replace(up.id, up.frag); err != nil {
				logger.Debug().Err(err).Int64("entity_id", up.id).Msg("Bar could not be replaced")
				continue
			}
			if len(up.marks) > 0 {
				s.scheduleHighlightClearLocked(up.id, up.marks)
			}
		}
		s.rendered[up.id] = up.counts
	}
	for _, id := range ids {
		if item, ok := items[id]; ok && !s.overtakenLocked(id, seq) {
			fresh[s.key(id)] = item.Counts.Normalize()
		}
	}
	s.deps.Page.RemoveSkeletons()
	s.mu.Unlock()

	s.deps.Store.SetMany(ctx, fresh)
}

// flipLocked marks an unchanged bar live without re-rendering it. It reports
// false when the entity has no bar. Caller holds mu.
func (s *Session) flipLocked(ctx context.Context, up barUpdate) bool {
	prov, ok := s.deps.Page.Provenance(up.id)
	if !ok {
		return false
	}
	if prov == models.ProvenanceLive {
		return true
	}
	if err := s.deps.Page.SetProvenance(up.id, models.ProvenanceLive); err != nil {
		return false
	}
	if s.view.Toggleable() {
		_ = s.deps.Page.SetControlsEnabled(up.id, true)
	}
	_ = s.deps.Page.SetSelection(up.id, up.selected)
	logging.Ctx(ctx).Trace().Int64("entity_id", up.id).Msg("Cached bar verified live")
	return true
}

// scheduleHighlightClearLocked clears id's highlights after
// HighlightDuration, replacing an earlier pending clear. Caller holds mu.
func (s *Session) scheduleHighlightClearLocked(id int64, marks map[string]diff.Kind) {
	for _, kind := range marks {
		metrics.RecordHighlight(string(kind))
	}
	if stop, ok := s.timers[id]; ok {
		stop()
	}
	s.timers[id] = s.deps.AfterFunc(HighlightDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		_ = s.deps.Page.ClearHighlights(id)
		delete(s.timers, id)
	})
}

func (s *Session) startPoller(ctx context.Context) {
	interval := s.view.PollIntervalSeconds
	if s.deps.Poller.Start(ctx, interval, s.Refresh) {
		logging.Ctx(ctx).Debug().Int("interval_seconds", interval).Msg("Poller started")
	}
}
