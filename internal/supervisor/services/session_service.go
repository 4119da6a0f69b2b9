// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/reactbar/internal/logging"
)

// Session is the lifecycle surface of a render session. *pipeline.Session
// satisfies it.
type Session interface {
	ID() string
	Load(ctx context.Context, ids []int64) error
	Close()
}

// SessionService keeps a render session alive under the session layer.
//
// Serve performs the initial batch load for the entities the page declares,
// then blocks while the session's poller refreshes in the background. When
// the context ends the session is closed, which stops its poller and any
// pending highlight timers.
//
// A failed initial load is returned as an error so the supervisor retries it
// with backoff. Load is safe to repeat: the cache paint is inert and the
// live reconciliation replaces whatever bars are already on the page.
type SessionService struct {
	session Session
	onLoad  func()
}

// NewSessionService wraps session. onLoad, when non-nil, runs after each
// successful load; the CLI uses it to write the rendered page.
func NewSessionService(session Session, onLoad func()) *SessionService {
	return &SessionService{session: session, onLoad: onLoad}
}

// Serve implements suture.Service.
func (s *SessionService) Serve(ctx context.Context) error {
	log := logging.With().Str("session_id", s.session.ID()).Logger()

	if err := s.session.Load(ctx, nil); err != nil {
		if ctx.Err() != nil {
			s.session.Close()
			return ctx.Err()
		}
		return fmt.Errorf("session %s load: %w", s.session.ID(), err)
	}
	log.Debug().Msg("Session loaded")
	if s.onLoad != nil {
		s.onLoad()
	}

	<-ctx.Done()
	s.session.Close()
	log.Debug().Msg("Session closed")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *SessionService) String() string {
	return "session-" + s.session.ID()
}
