// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/counting"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/metrics"
	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/page"
	"github.com/tomtom215/reactbar/internal/poller"
	"github.com/tomtom215/reactbar/internal/render"
)

// HighlightDuration is how long change markers stay on a bar.
const HighlightDuration = 2100 * time.Millisecond

// ErrToggleInFlight is returned when a toggle is requested while another is
// still waiting for the counting service.
var ErrToggleInFlight = errors.New("a reaction toggle is already in flight")

// ErrNotToggleable is returned by Toggle when the view does not accept
// toggles: the viewer may not react, or the bars are group aggregates.
var ErrNotToggleable = errors.New("reactions on this view cannot be toggled")

// SnapshotStore is the part of store.LocalStore the pipeline uses.
type SnapshotStore interface {
	GetMany(ctx context.Context, keys []string) map[string]models.Snapshot
	Set(ctx context.Context, key string, snap models.Snapshot)
	SetMany(ctx context.Context, snaps map[string]models.Snapshot)
}

// Deps are the collaborators of a Session.
type Deps struct {
	Store    SnapshotStore
	Service  counting.Service
	Renderer render.Renderer
	Page     page.Adapter

	// Auth identifies the viewer on every counting service call.
	Auth counting.Auth

	// Notifier defaults to LogNotifier.
	Notifier Notifier

	// Poller defaults to a poller driven by Visibility.
	Poller     *poller.Poller
	Visibility poller.VisibilitySource

	// AfterFunc schedules highlight removal. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) (stop func() bool)
}

// Session is the state of one page view.
//
// toggledAt holds the toggleSeq of the latest toggle on each entity. A
// reconcile planned before that toggle leaves the entity alone.
type Session struct {
	id   string
	view *config.ViewConfig
	deps Deps

	mu           sync.Mutex
	rendered     map[int64]models.Snapshot
	toggling     bool
	toggleTarget int64
	toggleSeq    uint64
	toggledAt    map[int64]uint64
	timers       map[int64]func() bool
	closed       bool
}

// NewSession creates a session for one page view.
func NewSession(deps Deps, view *config.ViewConfig) (*Session, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("pipeline: store is required")
	case deps.Service == nil:
		return nil, errors.New("pipeline: counting service is required")
	case deps.Renderer == nil:
		return nil, errors.New("pipeline: renderer is required")
	case deps.Page == nil:
		return nil, errors.New("pipeline: page adapter is required")
	case view == nil:
		return nil, errors.New("pipeline: view config is required")
	}

	s := &Session{
		id:       logging.NewSessionID(),
		view:     view,
		deps:     deps,
		rendered:  make(map[int64]models.Snapshot),
		toggledAt: make(map[int64]uint64),
		timers:    make(map[int64]func() bool),
	}
	if s.deps.Notifier == nil {
		s.deps.Notifier = LogNotifier{}
	}
	if s.deps.Poller == nil {
		s.deps.Poller = poller.New(deps.Visibility, poller.WithName("poller-"+s.id))
	}
	if s.deps.AfterFunc == nil {
		s.deps.AfterFunc = func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		}
	}
	return s, nil
}

// ID returns the session ID used in logs.
func (s *Session) ID() string { return s.id }

// Poller returns the session's poller.
func (s *Session) Poller() *poller.Poller { return s.deps.Poller }

// Rendered returns a copy of the last-rendered snapshot of id.
func (s *Session) Rendered(id int64) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.rendered[id]
	return snap.Clone(), ok
}

// Close stops the poller and pending highlight timers.
func (s *Session) Close() {
	// The poller waits for a running tick, which may need s.mu.
	s.deps.Poller.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, stop := range s.timers {
		stop()
		delete(s.timers, id)
	}
}

// overtakenLocked reports whether a toggle on id started after seq or is
// still in flight. Caller holds mu.
func (s *Session) overtakenLocked(id int64, seq uint64) bool {
	return s.toggledAt[id] > seq || (s.toggling && s.toggleTarget == id)
}

func (s *Session) ctx(ctx context.Context) context.Context {
	return logging.ContextWithSessionID(ctx, s.id)
}

func (s *Session) ref(id int64) models.EntityRef {
	return models.EntityRef{
		Component: s.view.Component,
		ItemType:  s.view.ItemType,
		Scope:     s.view.Scope,
		ID:        id,
	}
}

func (s *Session) key(id int64) string {
	return models.CacheKey(s.view.Namespace, s.ref(id))
}

func (s *Session) fetchRequest(ids []int64) counting.FetchRequest {
	return counting.FetchRequest{
		Component: s.view.Component,
		ItemType:  s.view.ItemType,
		Scope:     s.view.Scope,
		IDs:       ids,
		Auth:      s.deps.Auth,
	}
}

// renderBar builds one detached bar.
func (s *Session) renderBar(ctx context.Context, bar render.Bar) (*render.Fragment, error) {
	frag, err := s.deps.Renderer.Render(ctx, render.TemplateBar, render.NewBarContext(s.view, bar))
	if err != nil {
		return nil, fmt.Errorf("render bar %d: %w", bar.ID, err)
	}
	metrics.RecordBarRendered(string(bar.Provenance))
	return frag, nil
}

func (s *Session) renderSkeleton(ctx context.Context, id int64) (*render.Fragment, error) {
	frag, err := s.deps.Renderer.Render(ctx, render.TemplateSkeleton, render.NewSkeletonContext(s.view, id))
	if err != nil {
		return nil, fmt.Errorf("render skeleton %d: %w", id, err)
	}
	return frag, nil
}
