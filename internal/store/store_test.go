// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// failingBackend fails every call.
type failingBackend struct{}

func (failingBackend) Get(context.Context, []string) (map[string]Record, error) {
	return nil, errors.New("disk on fire")
}
func (failingBackend) Put(context.Context, []Record) error   { return errors.New("disk on fire") }
func (failingBackend) Delete(context.Context, []string) error { return errors.New("disk on fire") }
func (failingBackend) Close() error                          { return nil }

func newMemoryStore(t *testing.T, opts ...Option) (*LocalStore, *MemoryBackend) {
	t.Helper()
	mem := NewMemoryBackend()
	ls := New(func() (Backend, error) { return mem, nil }, opts...)
	return ls, mem
}

func TestLocalStore_RoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	ls, _ := newMemoryStore(t)
	defer ls.Close()

	if !ls.IsAvailable() {
		t.Fatal("IsAvailable() = false, want true")
	}

	ls.Set(ctx, "k1", models.Snapshot{"heart": 2, "cry": 0})
	ls.SetMany(ctx, map[string]models.Snapshot{
		"k2": {"+1": 1},
		"k3": {},
	})

	got := ls.GetMany(ctx, []string{"k1", "k2", "k3", "missing"})
	want := map[string]models.Snapshot{
		"k1":      {"heart": 2},
		"k2":      {"+1": 1},
		"k3":      {},
		"missing": nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetMany() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := ls.Get(ctx, "missing"); ok {
		t.Error("Get(missing) ok = true")
	}

	// Overwrite replaces the whole entry.
	ls.Set(ctx, "k1", models.Snapshot{"tada": 1})
	snap, ok := ls.Get(ctx, "k1")
	if !ok {
		t.Fatal("Get(k1) ok = false")
	}
	if diff := cmp.Diff(models.Snapshot{"tada": 1}, snap); diff != "" {
		t.Errorf("Get(k1) after overwrite mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalStore_TTL(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	ls, mem := newMemoryStore(t, WithClock(clock.Now))

	ls.Set(ctx, "post:1", models.Snapshot{"heart": 3})

	clock.Advance(604_800_000 * time.Millisecond)
	if _, ok := ls.Get(ctx, "post:1"); !ok {
		t.Fatal("entry exactly one TTL old should still be readable")
	}

	clock.Advance(time.Millisecond)
	if snap, ok := ls.Get(ctx, "post:1"); ok || snap != nil {
		t.Fatalf("expired Get() = %v, %v; want nil, false", snap, ok)
	}

	// Close waits for the background delete.
	if err := ls.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if n := mem.Len(); n != 0 {
		t.Errorf("backend holds %d records after expiry delete, want 0", n)
	}
}

func TestLocalStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	var opens atomic.Int32
	ls := New(func() (Backend, error) {
		opens.Add(1)
		return nil, errors.New("permission denied")
	})

	for i := 0; i < 3; i++ {
		if ls.IsAvailable() {
			t.Fatal("IsAvailable() = true, want false")
		}
	}
	ls.Set(ctx, "k", models.Snapshot{"heart": 1})
	if _, ok := ls.Get(ctx, "k"); ok {
		t.Error("Get() on unavailable store reported a hit")
	}
	got := ls.GetMany(ctx, []string{"a", "b"})
	if len(got) != 2 || got["a"] != nil || got["b"] != nil {
		t.Errorf("GetMany() = %v, want two nil entries", got)
	}
	if n := opens.Load(); n != 1 {
		t.Errorf("opener called %d times, want 1", n)
	}
	if err := ls.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLocalStore_BackendErrorsSwallowed(t *testing.T) {
	ctx := context.Background()
	ls := New(func() (Backend, error) { return failingBackend{}, nil })
	defer ls.Close()

	ls.Set(ctx, "k", models.Snapshot{"heart": 1})
	if snap, ok := ls.Get(ctx, "k"); ok || snap != nil {
		t.Errorf("Get() = %v, %v; want miss", snap, ok)
	}
}

func TestLocalStore_CloseBeforeUse(t *testing.T) {
	var opens atomic.Int32
	ls := New(func() (Backend, error) {
		opens.Add(1)
		return NewMemoryBackend(), nil
	})
	if err := ls.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := ls.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if ls.IsAvailable() {
		t.Error("store closed before use became available")
	}
	if n := opens.Load(); n != 0 {
		t.Errorf("opener called %d times, want 0", n)
	}
}

func TestOpenerFor(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.StoreConfig
		available bool
	}{
		{"memory", config.StoreConfig{Backend: config.BackendMemory}, true},
		{"none", config.StoreConfig{Backend: config.BackendNone}, false},
		{"badger", config.StoreConfig{Backend: config.BackendBadger, Path: t.TempDir()}, true},
		{"badger without path", config.StoreConfig{Backend: config.BackendBadger}, false},
		{"sqlite", config.StoreConfig{Backend: config.BackendSQLite, Path: t.TempDir() + "/cache.db"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := New(OpenerFor(tt.cfg))
			defer ls.Close()
			if got := ls.IsAvailable(); got != tt.available {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.available)
			}
		})
	}
}
