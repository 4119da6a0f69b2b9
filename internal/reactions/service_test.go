// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package reactions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/counting"
	"github.com/tomtom215/reactbar/internal/models"
)

func testView(multi bool) *config.ViewConfig {
	return &config.ViewConfig{
		Component:  "comments",
		ItemType:   "post",
		Scope:      models.ScopeItem,
		CanReact:   true,
		MultiReact: multi,
		Emojis: []config.Emoji{
			{Key: "heart", Glyph: "❤️"},
			{Key: "+1", Glyph: "👍"},
			{Key: "laughing", Glyph: "😆"},
		},
	}
}

func toggle(t *testing.T, svc *Service, user int64, category string) *models.ToggleResult {
	t.Helper()
	res, err := svc.Toggle(context.Background(), counting.ToggleRequest{
		Component: "comments", ItemType: "post", ItemID: 1, Category: category,
		Auth: counting.Auth{UserID: user},
	})
	if err != nil {
		t.Fatalf("Toggle(%q) error = %v", category, err)
	}
	return res
}

func TestToggle_MultiReact(t *testing.T) {
	svc := NewService(testView(true))

	res := toggle(t, svc, 10, "heart")
	if res.Action != models.ToggleAdded {
		t.Errorf("first toggle action = %s, want added", res.Action)
	}
	if diff := cmp.Diff([]string{"heart"}, res.Selected); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}

	res = toggle(t, svc, 10, "heart")
	if res.Action != models.ToggleRemoved {
		t.Errorf("second toggle action = %s, want removed", res.Action)
	}
	if len(res.Selected) != 0 || res.Counts.Count("heart") != 0 {
		t.Errorf("after remove: selected=%v counts=%v", res.Selected, res.Counts)
	}

	toggle(t, svc, 10, "heart")
	res = toggle(t, svc, 10, "+1")
	if res.Action != models.ToggleAdded {
		t.Errorf("second category action = %s, want added", res.Action)
	}
	if diff := cmp.Diff([]string{"heart", "+1"}, res.Selected); diff != "" {
		t.Errorf("both categories should stay selected (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(models.Snapshot{"heart": 1, "+1": 1}, res.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestToggle_SingleReact(t *testing.T) {
	svc := NewService(testView(false))

	toggle(t, svc, 10, "heart")
	res := toggle(t, svc, 10, "laughing")
	if res.Action != models.ToggleReplaced {
		t.Errorf("action = %s, want replaced", res.Action)
	}
	if diff := cmp.Diff([]string{"laughing"}, res.Selected); diff != "" {
		t.Errorf("exactly one category should be selected (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(models.Snapshot{"laughing": 1}, res.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	res = toggle(t, svc, 10, "laughing")
	if res.Action != models.ToggleRemoved || len(res.Selected) != 0 {
		t.Errorf("toggle of the held category: action=%s selected=%v", res.Action, res.Selected)
	}
}

func TestToggle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		view     *config.ViewConfig
		user     int64
		category string
		want     error
	}{
		{"unknown category", testView(true), 10, "rocket", counting.ErrInvalidCategory},
		{"anonymous viewer", testView(true), 0, "heart", counting.ErrNotPermitted},
		{"reactions disabled", func() *config.ViewConfig { v := testView(true); v.CanReact = false; return v }(), 10, "heart", counting.ErrNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.view)
			_, err := svc.Toggle(context.Background(), counting.ToggleRequest{
				Component: "comments", ItemType: "post", ItemID: 1, Category: tt.category,
				Auth: counting.Auth{UserID: tt.user},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Toggle() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetch_ItemScope(t *testing.T) {
	svc := NewService(testView(true))
	svc.Seed("comments", "post", 1, models.Snapshot{"+1": 7, "laughing": 2})
	toggle(t, svc, 10, "heart")

	items, err := svc.Fetch(context.Background(), counting.FetchRequest{
		Component: "comments", ItemType: "post", Scope: models.ScopeItem,
		IDs: []int64{1, 2}, Auth: counting.Auth{UserID: 10},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := map[int64]models.ItemState{
		1: {ID: 1, Counts: models.Snapshot{"+1": 7, "laughing": 2, "heart": 1}, Selected: []string{"heart"}},
		2: {ID: 2, Counts: models.Snapshot{}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}

	// Another viewer sees the same counts and no selection.
	items, _ = svc.Fetch(context.Background(), counting.FetchRequest{
		Component: "comments", ItemType: "post", Scope: models.ScopeItem,
		IDs: []int64{1}, Auth: counting.Auth{UserID: 11},
	})
	if len(items[1].Selected) != 0 {
		t.Errorf("viewer 11 selection = %v, want none", items[1].Selected)
	}
}

func TestFetch_GroupScope(t *testing.T) {
	svc := NewService(testView(true))
	svc.RegisterGroup("comments", "post", 100, 1, 2)
	svc.Seed("comments", "post", 1, models.Snapshot{"heart": 2})
	svc.Seed("comments", "post", 2, models.Snapshot{"heart": 1, "+1": 3})
	svc.Seed("comments", "post", 3, models.Snapshot{"heart": 50})
	toggle(t, svc, 10, "heart")

	items, err := svc.Fetch(context.Background(), counting.FetchRequest{
		Component: "comments", ItemType: "post", Scope: models.ScopeGroup,
		IDs: []int64{100}, Auth: counting.Auth{UserID: 10},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := models.ItemState{ID: 100, Counts: models.Snapshot{"heart": 4, "+1": 3}}
	if diff := cmp.Diff(want, items[100]); diff != "" {
		t.Errorf("group state mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_ComponentsDoNotCollide(t *testing.T) {
	svc := NewService(testView(true))
	svc.Seed("comments", "post", 1, models.Snapshot{"heart": 1})
	svc.Seed("forum", "post", 1, models.Snapshot{"heart": 9})

	items, _ := svc.Fetch(context.Background(), counting.FetchRequest{
		Component: "forum", ItemType: "post", Scope: models.ScopeItem, IDs: []int64{1},
	})
	if got := items[1].Counts.Count("heart"); got != 9 {
		t.Errorf("forum heart = %d, want 9", got)
	}
}

func TestFetch_GroupsAreScopedToComponent(t *testing.T) {
	svc := NewService(testView(true))
	svc.RegisterGroup("comments", "post", 100, 1)
	svc.RegisterGroup("forum", "post", 100, 2)
	svc.Seed("comments", "post", 1, models.Snapshot{"heart": 1})
	svc.Seed("forum", "post", 2, models.Snapshot{"+1": 5})

	for _, tt := range []struct {
		component string
		want      models.Snapshot
	}{
		{"comments", models.Snapshot{"heart": 1}},
		{"forum", models.Snapshot{"+1": 5}},
		{"wiki", models.Snapshot{}},
	} {
		items, err := svc.Fetch(context.Background(), counting.FetchRequest{
			Component: tt.component, ItemType: "post", Scope: models.ScopeGroup, IDs: []int64{100},
		})
		if err != nil {
			t.Fatalf("Fetch(%s) error = %v", tt.component, err)
		}
		if diff := cmp.Diff(tt.want, items[100].Counts); diff != "" {
			t.Errorf("%s group 100 counts (-want +got):\n%s", tt.component, diff)
		}
	}
}

func TestToggle_Concurrent(t *testing.T) {
	svc := NewService(testView(true))

	var wg sync.WaitGroup
	for user := int64(1); user <= 50; user++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			_, _ = svc.Toggle(context.Background(), counting.ToggleRequest{
				Component: "comments", ItemType: "post", ItemID: 1, Category: "heart",
				Auth: counting.Auth{UserID: user},
			})
		}(user)
	}
	wg.Wait()

	items, _ := svc.Fetch(context.Background(), counting.FetchRequest{
		Component: "comments", ItemType: "post", Scope: models.ScopeItem, IDs: []int64{1},
	})
	if got := items[1].Counts.Count("heart"); got != 50 {
		t.Errorf("heart = %d, want 50", got)
	}
}
