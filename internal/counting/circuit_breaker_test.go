// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package counting

import (
	"context"
	"errors"
	"net/http"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reactbar/internal/models"
)

// stubService returns err from every call, or a fixed result when err is nil.
type stubService struct {
	err   error
	calls int
}

func (s *stubService) Fetch(_ context.Context, req FetchRequest) (map[int64]models.ItemState, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[int64]models.ItemState, len(req.IDs))
	for _, id := range req.IDs {
		out[id] = models.ItemState{ID: id, Counts: models.Snapshot{}}
	}
	return out, nil
}

func (s *stubService) Toggle(_ context.Context, req ToggleRequest) (*models.ToggleResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.ToggleResult{Action: models.ToggleAdded, ItemID: req.ItemID}, nil
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	stub := &stubService{}
	cbc := NewCircuitBreakerClient(stub, BreakerSettings{Name: "test-opens"})

	if cbc.State() != "closed" {
		t.Fatalf("initial state = %s, want closed", cbc.State())
	}

	// 7 failures and 3 successes: 70% over the 60% threshold.
	for i := 0; i < 10; i++ {
		_, _ = cbc.execute(func() (interface{}, error) {
			if i < 7 {
				return nil, errors.New("simulated failure")
			}
			return "ok", nil
		})
	}
	// ReadyToTrip is evaluated on the next failure.
	_, _ = cbc.execute(func() (interface{}, error) { return nil, errors.New("trip") })

	if cbc.cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", cbc.cb.State())
	}

	_, err := cbc.Fetch(context.Background(), FetchRequest{IDs: []int64{1}})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Fetch() error = %v, want ErrOpenState", err)
	}
	if stub.calls != 0 {
		t.Errorf("wrapped service called %d times while open", stub.calls)
	}
}

func TestCircuitBreaker_StaysClosedBelowThreshold(t *testing.T) {
	cbc := NewCircuitBreakerClient(&stubService{}, BreakerSettings{Name: "test-below"})

	for i := 0; i < 10; i++ {
		_, _ = cbc.execute(func() (interface{}, error) {
			if i < 5 {
				return nil, errors.New("simulated failure")
			}
			return "ok", nil
		})
	}
	if cbc.State() != "closed" {
		t.Errorf("state = %s, want closed at 50%% failures", cbc.State())
	}
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	stub := &stubService{err: &ServiceError{Status: http.StatusForbidden, Code: CodeNotPermitted}}
	cbc := NewCircuitBreakerClient(stub, BreakerSettings{Name: "test-client-errors"})

	for i := 0; i < 20; i++ {
		_, err := cbc.Toggle(context.Background(), ToggleRequest{ItemID: 1, Category: "heart"})
		if !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("Toggle() error = %v, want ErrNotPermitted", err)
		}
	}
	if cbc.State() != "closed" {
		t.Errorf("state = %s, want closed", cbc.State())
	}
	if stub.calls != 20 {
		t.Errorf("calls = %d, want 20", stub.calls)
	}
}

func TestCircuitBreaker_PassesResults(t *testing.T) {
	cbc := NewCircuitBreakerClient(&stubService{}, BreakerSettings{Name: "test-pass"})

	items, err := cbc.Fetch(context.Background(), FetchRequest{IDs: []int64{4, 5}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}

	res, err := cbc.Toggle(context.Background(), ToggleRequest{ItemID: 9, Category: "heart"})
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if res.ItemID != 9 {
		t.Errorf("ItemID = %d, want 9", res.ItemID)
	}
}

func TestCastResult_WrongType(t *testing.T) {
	if _, err := castResult[int]("string", nil); err == nil {
		t.Error("expected an error for a mismatched type")
	}
}

func TestStateToString(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		str   string
		val   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, tt := range tests {
		if got := stateToString(tt.state); got != tt.str {
			t.Errorf("stateToString(%v) = %s, want %s", tt.state, got, tt.str)
		}
		if got := stateToFloat(tt.state); got != tt.val {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.val)
		}
	}
}
