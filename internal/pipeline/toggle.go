// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package pipeline

import (
	"context"
	"fmt"

	"github.com/tomtom215/reactbar/internal/counting"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/metrics"
	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/render"
)

// Toggle flips the viewer's reaction with category on entity id and
// rebuilds that bar from the response. Nothing changes on the page until
// the counting service answers. On failure the bar's controls are restored,
// the Notifier is told and the error is returned. Views that are not
// Toggleable get ErrNotToggleable without any page change.
func (s *Session) Toggle(ctx context.Context, id int64, category string) (*models.ToggleResult, error) {
	ctx = s.ctx(ctx)
	logger := logging.CtxWith(ctx).Int64("entity_id", id).Str("category", category).Logger()

	if !s.view.Toggleable() {
		metrics.RecordToggle("rejected")
		return nil, ErrNotToggleable
	}

	s.mu.Lock()
	if s.toggling {
		s.mu.Unlock()
		metrics.RecordToggle("rejected")
		return nil, ErrToggleInFlight
	}
	s.toggling = true
	s.toggleTarget = id
	s.toggleSeq++
	s.toggledAt[id] = s.toggleSeq
	prov, hadBar := s.deps.Page.Provenance(id)
	if hadBar {
		_ = s.deps.Page.SetControlsEnabled(id, false)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.toggling = false
		s.mu.Unlock()
	}()

	result, err := s.deps.Service.Toggle(ctx, counting.ToggleRequest{
		Component: s.view.Component,
		ItemType:  s.view.ItemType,
		ItemID:    id,
		Category:  category,
		Auth:      s.deps.Auth,
	})
	if err != nil {
		return nil, s.toggleFailed(ctx, id, category, hadBar && prov == models.ProvenanceLive, err)
	}
	if result.ItemID == 0 {
		result.ItemID = id
	}
	state := result.State()
	counts := state.Counts.Normalize()

	frag, err := s.renderBar(ctx, render.Bar{
		ID:         id,
		Counts:     counts,
		Selected:   state.Selected,
		Provenance: models.ProvenanceLive,
	})
	if err != nil {
		return nil, s.toggleFailed(ctx, id, category, hadBar && prov == models.ProvenanceLive, err)
	}

	s.mu.Lock()
	if err := s.deps.Page.Replace(id, frag); err != nil {
		logger.Debug().Err(err).Msg("Toggled bar could not be replaced")
	}
	s.rendered[id] = counts
	s.mu.Unlock()

	s.deps.Store.Set(ctx, s.key(id), counts)
	metrics.RecordToggle(string(result.Action))
	logger.Debug().Str("action", string(result.Action)).Msg("Reaction toggled")
	return result, nil
}

// toggleFailed restores the controls of a bar that was live before the
// toggle, records the failure and tells the Notifier.
func (s *Session) toggleFailed(ctx context.Context, id int64, category string, wasLive bool, err error) error {
	if wasLive {
		s.mu.Lock()
		_ = s.deps.Page.SetControlsEnabled(id, true)
		s.mu.Unlock()
	}
	metrics.RecordToggle("failed")
	logging.Ctx(ctx).Debug().Err(err).Int64("entity_id", id).Str("category", category).Msg("Toggle failed")
	s.deps.Notifier.Notify(ctx, OpToggle, err)
	return fmt.Errorf("toggle %q on %d: %w", category, id, err)
}
