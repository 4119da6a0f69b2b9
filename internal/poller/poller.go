// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/metrics"
)

// ErrSkip is returned by a tick that deliberately did nothing.
var ErrSkip = errors.New("tick skipped")

// TickFunc performs one refresh.
type TickFunc func(ctx context.Context) error

// VisibilitySource reports whether the view is visible and announces
// changes.
type VisibilitySource interface {
	Visible() bool
	Subscribe() (<-chan bool, func())
}

// Ticker is the subset of time.Ticker the poller uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// Stats is a point-in-time view of a poller.
type Stats struct {
	Running   bool
	Suspended bool
	Interval  time.Duration
	Ticks     int64
	Skipped   int64
	Failures  int64
}

// Option configures a Poller.
type Option func(*Poller)

// WithTickerFactory replaces time.NewTicker.
func WithTickerFactory(fn func(time.Duration) Ticker) Option {
	return func(p *Poller) { p.newTicker = fn }
}

// WithName sets the name used in logs and by String.
func WithName(name string) Option {
	return func(p *Poller) { p.name = name }
}

// Poller runs a TickFunc on a fixed cadence while the view is visible.
type Poller struct {
	name       string
	visibility VisibilitySource
	newTicker  func(time.Duration) Ticker

	mu       sync.RWMutex
	running  bool
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup

	suspended atomic.Bool
	ticks     atomic.Int64
	skipped   atomic.Int64
	failures  atomic.Int64
}

// New creates a poller. A nil visibility source means always visible.
func New(visibility VisibilitySource, opts ...Option) *Poller {
	p := &Poller{
		name:       "poller",
		visibility: visibility,
		newTicker:  newRealTicker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling every intervalSeconds. It returns false when polling
// is disabled or the poller is already running.
func (p *Poller) Start(ctx context.Context, intervalSeconds int, tick TickFunc) bool {
	if intervalSeconds <= 0 || tick == nil {
		return false
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return false
	}
	p.running = true
	p.interval = time.Duration(intervalSeconds) * time.Second
	p.stopChan = make(chan struct{})
	stop := p.stopChan
	interval := p.interval
	p.mu.Unlock()

	logging.Ctx(ctx).Debug().Str("poller", p.name).Dur("interval", interval).Msg("Starting poller")
	metrics.TrackPoller(true)

	p.wg.Add(1)
	go p.loop(ctx, interval, tick, stop)
	return true
}

// Stop ends polling and waits for an in-progress tick. Safe to call more
// than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
}

// Serve implements suture.Service. It blocks until ctx is cancelled and
// then stops the poller.
func (p *Poller) Serve(ctx context.Context) error {
	<-ctx.Done()
	p.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (p *Poller) String() string {
	return p.name
}

// IsRunning returns whether the poller is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Stats returns the poller counters.
func (p *Poller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Stats{
		Running:   p.running,
		Suspended: p.suspended.Load(),
		Interval:  p.interval,
		Ticks:     p.ticks.Load(),
		Skipped:   p.skipped.Load(),
		Failures:  p.failures.Load(),
	}
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, tick TickFunc, stop <-chan struct{}) {
	defer p.wg.Done()
	defer metrics.TrackPoller(false)

	var changes <-chan bool
	visible := true
	if p.visibility != nil {
		ch, unsubscribe := p.visibility.Subscribe()
		defer unsubscribe()
		changes = ch
		visible = p.visibility.Visible()
	}

	var ticker Ticker
	var tickC <-chan time.Time
	startTicker := func() {
		ticker = p.newTicker(interval)
		tickC = ticker.C()
		p.suspended.Store(false)
	}
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
		p.suspended.Store(true)
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	if visible {
		startTicker()
	} else {
		stopTicker()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-tickC:
			p.run(ctx, tick)
		case v := <-changes:
			switch {
			case v && ticker == nil:
				p.run(ctx, tick)
				startTicker()
			case !v && ticker != nil:
				logging.Ctx(ctx).Debug().Str("poller", p.name).Msg("View hidden, suspending poller")
				stopTicker()
			}
		}
	}
}

// run executes one tick and records the outcome.
func (p *Poller) run(ctx context.Context, tick TickFunc) {
	err := tick(ctx)
	switch {
	case errors.Is(err, ErrSkip):
		p.skipped.Add(1)
		metrics.RecordPollTick(true, nil)
	case err != nil:
		p.ticks.Add(1)
		p.failures.Add(1)
		metrics.RecordPollTick(false, err)
		logging.Ctx(ctx).Debug().Err(err).Str("poller", p.name).Msg("Poll tick failed")
	default:
		p.ticks.Add(1)
		metrics.RecordPollTick(false, nil)
	}
}
