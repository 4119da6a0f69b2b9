// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/reactbar/internal/logging"
)

// GCRunner is implemented by backends that need periodic space reclamation.
type GCRunner interface {
	RunGC(ratio float64) error
}

// Maintainer periodically runs value log garbage collection on a badger
// backend. Expired snapshots are not swept here; they are removed lazily on
// read.
type Maintainer struct {
	gc       GCRunner
	interval time.Duration
	ratio    float64

	mu      sync.Mutex
	running bool
	lastRun time.Time
	runs    int64
}

// NewMaintainer returns a Maintainer for gc. A zero interval defaults to
// ten minutes.
func NewMaintainer(gc GCRunner, interval time.Duration) *Maintainer {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Maintainer{gc: gc, interval: interval, ratio: 0.5}
}

// Serve runs the GC loop until ctx is cancelled. It implements suture.Service.
func (m *Maintainer) Serve(ctx context.Context) error {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	logging.Info().Dur("interval", m.interval).Msg("Store maintenance started")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Store maintenance stopped")
			return ctx.Err()
		case <-ticker.C:
			m.RunOnce()
		}
	}
}

// RunOnce performs one GC pass.
func (m *Maintainer) RunOnce() {
	start := time.Now()
	if err := m.gc.RunGC(m.ratio); err != nil {
		logging.Warn().Err(err).Msg("Store GC failed")
	}
	m.mu.Lock()
	m.lastRun = start
	m.runs++
	m.mu.Unlock()
	logging.Debug().Dur("duration", time.Since(start)).Msg("Store GC pass complete")
}

// IsRunning reports whether Serve is active.
func (m *Maintainer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Runs returns how many GC passes completed and when the last one started.
func (m *Maintainer) Runs() (int64, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs, m.lastRun
}

// String implements fmt.Stringer for supervisor logging.
func (m *Maintainer) String() string {
	return "store-maintenance"
}
