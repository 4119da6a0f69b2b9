// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reactbar/internal/pipeline"
)

var (
	_ suture.Service = (*SessionService)(nil)
	_ Session        = (*pipeline.Session)(nil)
)

type fakeSession struct {
	failLoads int32
	loads     atomic.Int32
	closes    atomic.Int32
	loaded    chan struct{}
}

func newFakeSession(failLoads int32) *fakeSession {
	return &fakeSession{failLoads: failLoads, loaded: make(chan struct{}, 8)}
}

func (f *fakeSession) ID() string { return "s1" }

func (f *fakeSession) Load(context.Context, []int64) error {
	if f.loads.Add(1) <= f.failLoads {
		return errors.New("counting service unavailable")
	}
	f.loaded <- struct{}{}
	return nil
}

func (f *fakeSession) Close() { f.closes.Add(1) }

func TestSessionService_LoadThenCloseOnCancel(t *testing.T) {
	sess := newFakeSession(0)
	var callbacks atomic.Int32
	svc := NewSessionService(sess, func() { callbacks.Add(1) })

	if got := svc.String(); got != "session-s1" {
		t.Errorf("String() = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-sess.loaded:
	case <-time.After(time.Second):
		t.Fatal("Load was not called")
	}
	if sess.closes.Load() != 0 {
		t.Error("session closed while still serving")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if sess.closes.Load() != 1 {
		t.Errorf("Close called %d times, want 1", sess.closes.Load())
	}
	if callbacks.Load() != 1 {
		t.Errorf("onLoad called %d times, want 1", callbacks.Load())
	}
}

func TestSessionService_LoadFailureIsReturned(t *testing.T) {
	sess := newFakeSession(1)
	err := NewSessionService(sess, nil).Serve(context.Background())
	if err == nil {
		t.Fatal("expected load error")
	}
	if sess.closes.Load() != 0 {
		t.Error("a failed load must leave the session open for a retry")
	}
}

func TestSessionService_SupervisorRetriesLoad(t *testing.T) {
	sess := newFakeSession(2)

	sup := suture.New("session-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewSessionService(sess, nil))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-sess.loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("load never succeeded")
	}
	if sess.loads.Load() != 3 {
		t.Errorf("Load called %d times, want 3", sess.loads.Load())
	}

	cancel()
	<-errCh
	if sess.closes.Load() != 1 {
		t.Errorf("Close called %d times, want 1", sess.closes.Load())
	}
}
