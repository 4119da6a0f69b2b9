// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package counting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/models"
)

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(&config.CountingConfig{
		URL:            url,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		RetryBaseDelay: 10 * time.Millisecond,
		AuthToken:      "secret",
		UserID:         7,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, apiErr *models.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{Status: "success", Data: data, Error: apiErr}
	if apiErr != nil {
		resp.Status = "error"
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestHTTPClient_Fetch(t *testing.T) {
	var gotBody FetchBody
	var gotAuth, gotUser string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != FetchPath || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotUser = r.Header.Get(UserHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeEnvelope(w, http.StatusOK, models.FetchItemsData{Items: []models.ItemState{
			{ID: 1, Counts: models.Snapshot{"heart": 2}, Selected: []string{"heart"}},
			{ID: 3},
		}}, nil)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	items, err := client.Fetch(context.Background(), FetchRequest{
		Component: "comments", ItemType: "post", Scope: models.ScopeItem, IDs: []int64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	wantBody := FetchBody{Component: "comments", ItemType: "post", Scope: "item", IDs: []int64{1, 2, 3}}
	if diff := cmp.Diff(wantBody, gotBody); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUser != "7" {
		t.Errorf("%s = %q, want 7", UserHeader, gotUser)
	}

	want := map[int64]models.ItemState{
		1: {ID: 1, Counts: models.Snapshot{"heart": 2}, Selected: []string{"heart"}},
		3: {ID: 3, Counts: models.Snapshot{}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPClient_RequestAuthOverridesDefault(t *testing.T) {
	var gotUser string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get(UserHeader)
		writeEnvelope(w, http.StatusOK, models.FetchItemsData{}, nil)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Fetch(context.Background(), FetchRequest{
		Component: "c", ItemType: "t", Scope: "item", IDs: []int64{1},
		Auth: Auth{UserID: 42},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotUser != "42" {
		t.Errorf("%s = %q, want 42", UserHeader, gotUser)
	}
}

func TestHTTPClient_Toggle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != TogglePath {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body ToggleBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, http.StatusOK, models.ToggleResult{
			Action:   models.ToggleAdded,
			ItemID:   body.ItemID,
			Selected: []string{body.Category},
			Counts:   models.Snapshot{body.Category: 1},
		}, nil)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Toggle(context.Background(), ToggleRequest{
		Component: "comments", ItemType: "post", ItemID: 5, Category: "heart",
	})
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	want := &models.ToggleResult{
		Action: models.ToggleAdded, ItemID: 5, Selected: []string{"heart"}, Counts: models.Snapshot{"heart": 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Toggle() mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		apiErr   *models.APIError
		sentinel error
		client   bool
	}{
		{"invalid category", http.StatusBadRequest, &models.APIError{Code: CodeInvalidCategory, Message: "unknown"}, ErrInvalidCategory, true},
		{"not permitted", http.StatusForbidden, &models.APIError{Code: CodeNotPermitted, Message: "login"}, ErrNotPermitted, true},
		{"internal", http.StatusInternalServerError, &models.APIError{Code: CodeInternal, Message: "boom"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, nil, tt.apiErr)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Toggle(context.Background(), ToggleRequest{
				Component: "c", ItemType: "t", ItemID: 1, Category: "heart",
			})
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *ServiceError", err)
			}
			if se.Status != tt.status || se.Code != tt.apiErr.Code {
				t.Errorf("ServiceError = %+v", se)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if got := IsClientError(err); got != tt.client {
				t.Errorf("IsClientError() = %v, want %v", got, tt.client)
			}
		})
	}
}

func TestHTTPClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), FetchRequest{IDs: []int64{1}})
	var se *ServiceError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("error = %v, want 502 ServiceError", err)
	}
}

func TestHTTPClient_RetriesOn429(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, http.StatusOK, models.FetchItemsData{}, nil)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Fetch(context.Background(), FetchRequest{IDs: []int64{1}}); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestHTTPClient_MaxRetriesExceeded(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), FetchRequest{IDs: []int64{1}})
	var se *ServiceError
	if !errors.As(err, &se) || se.Status != http.StatusTooManyRequests {
		t.Fatalf("error = %v, want 429 ServiceError", err)
	}
	if IsClientError(err) {
		t.Error("429 must not count as a client error")
	}
	// Initial attempt plus MaxRetries.
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestHTTPClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(server.URL).Fetch(ctx, FetchRequest{IDs: []int64{1}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Retry-After wait was not cancelled, took %v", elapsed)
	}
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Fetch(context.Background(), FetchRequest{IDs: []int64{1}})
	if err == nil {
		t.Fatal("expected an error for a closed server")
	}
	if IsClientError(err) {
		t.Error("transport failures must not be client errors")
	}
}
