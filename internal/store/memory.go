// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps records in a map. Records are copied on the way in
// and out.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Record)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, keys []string) (map[string]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make(map[string]Record, len(keys))
	for _, k := range keys {
		if rec, ok := m.records[k]; ok {
			rec.Counts = rec.Counts.Clone()
			out[k] = rec
		}
	}
	return out, nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, rec := range records {
		rec.Counts = rec.Counts.Clone()
		m.records[rec.Key] = rec
	}
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(m.records, k)
	}
	return nil
}

// Len returns the number of stored records.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
