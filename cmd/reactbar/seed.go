// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/reactions"
)

// seedFile is the --seed document for the reference service:
//
//	{
//	  "items":  [{"id": 1, "counts": {"heart": 2, "+1": 1}}],
//	  "groups": [{"id": 10, "items": [1, 2, 3]}]
//	}
type seedFile struct {
	Items  []seedItem  `json:"items"`
	Groups []seedGroup `json:"groups"`
}

type seedItem struct {
	ID     int64           `json:"id"`
	Counts models.Snapshot `json:"counts"`
}

type seedGroup struct {
	ID    int64   `json:"id"`
	Items []int64 `json:"items"`
}

func readSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for _, item := range seed.Items {
		if item.ID <= 0 {
			return nil, fmt.Errorf("seed file %s: item id must be positive, got %d", path, item.ID)
		}
	}
	return &seed, nil
}

// apply seeds svc for the configured component and item type. Categories
// outside the configured emoji set are skipped.
func (s *seedFile) apply(svc *reactions.Service, view *config.ViewConfig) {
	for _, item := range s.Items {
		counts := models.Snapshot{}
		for category, n := range item.Counts {
			if view.HasCategory(category) {
				counts[category] = n
			}
		}
		svc.Seed(view.Component, view.ItemType, item.ID, counts)
	}
	for _, g := range s.Groups {
		svc.RegisterGroup(view.Component, view.ItemType, g.ID, g.Items...)
	}
}
