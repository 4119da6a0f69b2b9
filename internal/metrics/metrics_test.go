// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreLookup(t *testing.T) {
	hits := testutil.ToFloat64(StoreHits)
	misses := testutil.ToFloat64(StoreMisses)
	expired := testutil.ToFloat64(StoreExpired)

	RecordStoreLookup(true, false)
	RecordStoreLookup(false, false)
	RecordStoreLookup(false, true)

	if got := testutil.ToFloat64(StoreHits) - hits; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(StoreMisses) - misses; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(StoreExpired) - expired; got != 1 {
		t.Errorf("expired delta = %v, want 1", got)
	}
}

func TestSetStoreAvailable(t *testing.T) {
	SetStoreAvailable(true)
	if got := testutil.ToFloat64(StoreAvailable); got != 1 {
		t.Errorf("StoreAvailable = %v, want 1", got)
	}
	SetStoreAvailable(false)
	if got := testutil.ToFloat64(StoreAvailable); got != 0 {
		t.Errorf("StoreAvailable = %v, want 0", got)
	}
}

func TestRecordServiceCall(t *testing.T) {
	before := testutil.ToFloat64(FetchErrors.WithLabelValues("toggle"))

	RecordServiceCall("toggle", 20*time.Millisecond, nil)
	RecordServiceCall("toggle", 20*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(FetchErrors.WithLabelValues("toggle")) - before; got != 1 {
		t.Errorf("toggle errors delta = %v, want 1", got)
	}
}

func TestRecordPollTick(t *testing.T) {
	tests := []struct {
		name    string
		skipped bool
		err     error
		label   string
	}{
		{"success", false, nil, "success"},
		{"error", false, errors.New("timeout"), "error"},
		{"skipped wins", true, errors.New("ignored"), "skipped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PollTicks.WithLabelValues(tt.label))
			RecordPollTick(tt.skipped, tt.err)
			if got := testutil.ToFloat64(PollTicks.WithLabelValues(tt.label)) - before; got != 1 {
				t.Errorf("%s delta = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestTrackPoller(t *testing.T) {
	before := testutil.ToFloat64(PollersActive)
	TrackPoller(true)
	TrackPoller(true)
	TrackPoller(false)
	if got := testutil.ToFloat64(PollersActive) - before; got != 1 {
		t.Errorf("PollersActive delta = %v, want 1", got)
	}
}
