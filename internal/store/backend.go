// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/reactbar/internal/models"
)

// SchemaVersion is bumped whenever the record encoding changes.
const SchemaVersion = 1

// DefaultTTL is how long a snapshot stays readable: one week.
const DefaultTTL = 7 * 24 * time.Hour

// Record is one persisted cache entry.
type Record struct {
	Key       string          `json:"key"`
	Counts    models.Snapshot `json:"counts"`
	WrittenAt int64           `json:"written_at"` // epoch milliseconds
}

// Backend is the persistence engine behind a LocalStore.
//
// Get returns only the keys that exist; absent keys are simply missing from
// the result. Put overwrites whole records.
type Backend interface {
	Get(ctx context.Context, keys []string) (map[string]Record, error)
	Put(ctx context.Context, records []Record) error
	Delete(ctx context.Context, keys []string) error
	Close() error
}

// Opener opens a Backend. A LocalStore calls it at most once.
type Opener func() (Backend, error)

var (
	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("store is closed")

	// ErrNoBackend is returned by OpenNone.
	ErrNoBackend = errors.New("no store backend configured")
)

// OpenNone is the opener for an explicitly disabled store.
func OpenNone() (Backend, error) {
	return nil, ErrNoBackend
}
