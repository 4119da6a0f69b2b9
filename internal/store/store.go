// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/metrics"
	"github.com/tomtom215/reactbar/internal/models"
)

// LocalStore is the snapshot cache used by a page session.
type LocalStore struct {
	open Opener
	ttl  time.Duration
	now  func() time.Time

	once      sync.Once
	backend   Backend
	available bool

	// mu guards closed and orders pending.Add against Close's Wait.
	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

// Option configures a LocalStore.
type Option func(*LocalStore)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *LocalStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *LocalStore) { s.now = now }
}

// New returns a LocalStore that opens its backend with open on first use.
func New(open Opener, opts ...Option) *LocalStore {
	s := &LocalStore{open: open, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenerFor maps the store configuration to a backend opener.
func OpenerFor(cfg config.StoreConfig) Opener {
	switch cfg.Backend {
	case config.BackendBadger:
		return func() (Backend, error) {
			return OpenBadger(BadgerConfig{
				Path:        cfg.Path,
				SyncWrites:  cfg.SyncWrites,
				Compression: cfg.Compression,
			})
		}
	case config.BackendSQLite:
		return func() (Backend, error) { return OpenSQLite(cfg.Path) }
	case config.BackendMemory:
		return func() (Backend, error) { return NewMemoryBackend(), nil }
	default:
		return OpenNone
	}
}

// IsAvailable reports whether the backend opened. The probe runs once and
// its result is kept for the life of the store.
func (s *LocalStore) IsAvailable() bool {
	s.once.Do(func() {
		if s.open == nil {
			s.open = OpenNone
		}
		b, err := s.open()
		if err != nil || b == nil {
			logging.Warn().Err(err).Msg("Local store unavailable, caching disabled")
			metrics.SetStoreAvailable(false)
			return
		}
		s.backend = b
		s.available = true
		metrics.SetStoreAvailable(true)
	})
	return s.available
}

// Backend returns the opened backend, or nil when unavailable.
func (s *LocalStore) Backend() Backend {
	if !s.IsAvailable() {
		return nil
	}
	return s.backend
}

// Get returns the snapshot stored under key. Expired entries report false
// and are deleted in the background.
func (s *LocalStore) Get(ctx context.Context, key string) (models.Snapshot, bool) {
	snap := s.GetMany(ctx, []string{key})[key]
	return snap, snap != nil
}

// GetMany returns an entry for every requested key. Missing, expired or
// unreadable keys map to nil.
func (s *LocalStore) GetMany(ctx context.Context, keys []string) map[string]models.Snapshot {
	out := make(map[string]models.Snapshot, len(keys))
	for _, k := range keys {
		out[k] = nil
	}
	if len(keys) == 0 || !s.IsAvailable() || s.isClosed() {
		return out
	}

	records, err := s.backend.Get(ctx, keys)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Int("keys", len(keys)).Msg("Local store read failed")
		metrics.RecordStoreFailure("get")
		for range keys {
			metrics.RecordStoreLookup(false, false)
		}
		return out
	}

	nowMS := s.now().UnixMilli()
	ttlMS := s.ttl.Milliseconds()
	var expired []string
	for _, k := range keys {
		rec, ok := records[k]
		switch {
		case !ok:
			metrics.RecordStoreLookup(false, false)
		case nowMS-rec.WrittenAt > ttlMS:
			expired = append(expired, k)
			metrics.RecordStoreLookup(false, true)
		default:
			counts := rec.Counts
			if counts == nil {
				counts = models.Snapshot{}
			}
			out[k] = counts
			metrics.RecordStoreLookup(true, false)
		}
	}

	if len(expired) > 0 {
		s.deleteAsync(ctx, expired)
	}
	return out
}

// Set writes snap under key, stamped with the current time.
func (s *LocalStore) Set(ctx context.Context, key string, snap models.Snapshot) {
	s.SetMany(ctx, map[string]models.Snapshot{key: snap})
}

// SetMany writes every entry, stamped with the current time. Failures are
// logged at debug level and otherwise ignored.
func (s *LocalStore) SetMany(ctx context.Context, snaps map[string]models.Snapshot) {
	if len(snaps) == 0 || !s.IsAvailable() || s.isClosed() {
		return
	}

	nowMS := s.now().UnixMilli()
	records := make([]Record, 0, len(snaps))
	for k, snap := range snaps {
		records = append(records, Record{Key: k, Counts: snap.Normalize(), WrittenAt: nowMS})
	}

	if err := s.backend.Put(ctx, records); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Int("records", len(records)).Msg("Local store write failed")
		metrics.RecordStoreFailure("put")
	}
}

// deleteAsync removes keys without blocking the caller.
func (s *LocalStore) deleteAsync(ctx context.Context, keys []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		// The read that found the entry may be cancelled; the delete should not be.
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.backend.Delete(delCtx, keys); err != nil {
			logging.Debug().Err(err).Strs("keys", keys).Msg("Expired entry delete failed")
			metrics.RecordStoreFailure("delete")
		}
	}()
}

func (s *LocalStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close waits for background deletes and closes the backend. It is safe
// to call more than once.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	// Waits for an in-flight open; a store never used is never opened.
	s.once.Do(func() {})
	s.pending.Wait()
	if s.backend != nil {
		return s.backend.Close()
	}
	return nil
}
