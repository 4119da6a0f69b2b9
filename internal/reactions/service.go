// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package reactions

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/counting"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/models"
)

// entityKey identifies one post.
type entityKey struct {
	component string
	itemType  string
	id        int64
}

// Service is an in-memory counting.Service.
type Service struct {
	mu sync.RWMutex

	categories map[string]struct{}
	multiReact bool
	canReact   bool

	// rows holds each viewer's ordered selection per post.
	rows map[entityKey]map[int64][]string

	// seeded holds pre-aggregated counts added on top of rows.
	seeded map[entityKey]models.Snapshot

	// groups maps a group entity to its member post IDs. Groups share the
	// component and item type of their members.
	groups map[entityKey][]int64
}

var _ counting.Service = (*Service)(nil)

// NewService creates a service accepting the categories configured for view.
func NewService(view *config.ViewConfig) *Service {
	s := &Service{
		categories: make(map[string]struct{}, len(view.Emojis)),
		multiReact: view.MultiReact,
		canReact:   view.CanReact,
		rows:       make(map[entityKey]map[int64][]string),
		seeded:     make(map[entityKey]models.Snapshot),
		groups:     make(map[entityKey][]int64),
	}
	for _, c := range view.Categories() {
		s.categories[c] = struct{}{}
	}
	return s
}

// RegisterGroup makes groupID a group-scope entity of component and
// itemType whose counts aggregate the given posts. Registering again
// replaces the membership.
func (s *Service) RegisterGroup(component, itemType string, groupID int64, itemIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[entityKey{component, itemType, groupID}] = append([]int64(nil), itemIDs...)
}

// Seed adds pre-aggregated counts to a post, as if imported from elsewhere.
// Seeded counts carry no viewer and cannot be toggled off.
func (s *Service) Seed(component, itemType string, itemID int64, counts models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entityKey{component, itemType, itemID}
	merged := s.seeded[key].Clone()
	if merged == nil {
		merged = models.Snapshot{}
	}
	for c, n := range counts.Normalize() {
		merged[c] += n
	}
	s.seeded[key] = merged
}

// Fetch implements counting.Service. Every requested ID is answered; unknown
// IDs have empty counts.
func (s *Service) Fetch(ctx context.Context, req counting.FetchRequest) (map[int64]models.ItemState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]models.ItemState, len(req.IDs))
	for _, id := range req.IDs {
		state := models.ItemState{ID: id}
		if req.Scope == models.ScopeGroup {
			state.Counts = s.groupCountsLocked(req.Component, req.ItemType, id)
		} else {
			key := entityKey{req.Component, req.ItemType, id}
			state.Counts = s.countsLocked(key)
			if sel := s.rows[key][req.Auth.UserID]; req.Auth.UserID != 0 && len(sel) > 0 {
				state.Selected = append([]string(nil), sel...)
			}
		}
		out[id] = state
	}
	return out, nil
}

// Toggle implements counting.Service.
func (s *Service) Toggle(ctx context.Context, req counting.ToggleRequest) (*models.ToggleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := s.categories[req.Category]; !ok {
		return nil, fmt.Errorf("%w: %q", counting.ErrInvalidCategory, req.Category)
	}
	if !s.canReact || req.Auth.UserID == 0 {
		return nil, counting.ErrNotPermitted
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := entityKey{req.Component, req.ItemType, req.ItemID}
	viewers := s.rows[key]
	if viewers == nil {
		viewers = make(map[int64][]string)
		s.rows[key] = viewers
	}

	current := viewers[req.Auth.UserID]
	var action models.ToggleAction
	var next []string

	switch {
	case contains(current, req.Category):
		action = models.ToggleRemoved
		next = without(current, req.Category)
	case s.multiReact || len(current) == 0:
		action = models.ToggleAdded
		next = append(append([]string(nil), current...), req.Category)
	default:
		action = models.ToggleReplaced
		next = []string{req.Category}
	}

	if len(next) == 0 {
		delete(viewers, req.Auth.UserID)
	} else {
		viewers[req.Auth.UserID] = next
	}

	logging.Ctx(ctx).Debug().
		Int64("item_id", req.ItemID).
		Str("category", req.Category).
		Str("action", string(action)).
		Msg("Reaction toggled")

	return &models.ToggleResult{
		Action:   action,
		ItemID:   req.ItemID,
		Selected: append([]string{}, next...),
		Counts:   s.countsLocked(key),
	}, nil
}

// countsLocked aggregates rows for key. Caller holds mu.
func (s *Service) countsLocked(key entityKey) models.Snapshot {
	counts := s.seeded[key].Clone()
	if counts == nil {
		counts = models.Snapshot{}
	}
	for _, sel := range s.rows[key] {
		for _, c := range sel {
			counts[c]++
		}
	}
	return counts
}

// groupCountsLocked sums the counts of every member post. Caller holds mu.
func (s *Service) groupCountsLocked(component, itemType string, groupID int64) models.Snapshot {
	total := models.Snapshot{}
	for _, itemID := range s.groups[entityKey{component, itemType, groupID}] {
		for c, n := range s.countsLocked(entityKey{component, itemType, itemID}) {
			total[c] += n
		}
	}
	return total
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
