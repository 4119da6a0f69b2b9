// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package counting

import (
	"context"

	"github.com/tomtom215/reactbar/internal/models"
)

// API paths served by the counting service.
const (
	FetchPath  = "/api/v1/reactions/fetch"
	TogglePath = "/api/v1/reactions/toggle"

	// UserHeader carries the viewer's user ID.
	UserHeader = "X-Reactbar-User"
)

// Auth identifies the viewer. A zero UserID is an anonymous viewer.
type Auth struct {
	UserID int64
	Token  string
}

// FetchRequest asks for the current state of a batch of entities.
type FetchRequest struct {
	Component string
	ItemType  string
	Scope     string
	IDs       []int64
	Auth      Auth
}

// ToggleRequest flips the viewer's reaction with Category on one entity.
type ToggleRequest struct {
	Component string
	ItemType  string
	ItemID    int64
	Category  string
	Auth      Auth
}

// Service is the counting service as seen by the render pipeline.
type Service interface {
	// Fetch returns the state of every known id. Selections are only
	// populated for item scope.
	Fetch(ctx context.Context, req FetchRequest) (map[int64]models.ItemState, error)

	// Toggle applies one toggle and returns the resulting state.
	Toggle(ctx context.Context, req ToggleRequest) (*models.ToggleResult, error)
}

// FetchBody is the JSON body of a fetch call.
type FetchBody struct {
	Component string  `json:"component" validate:"required"`
	ItemType  string  `json:"item_type" validate:"required"`
	Scope     string  `json:"scope" validate:"oneof=item group"`
	IDs       []int64 `json:"ids" validate:"entityids,max=500"`
}

// ToggleBody is the JSON body of a toggle call.
type ToggleBody struct {
	Component string `json:"component" validate:"required"`
	ItemType  string `json:"item_type" validate:"required"`
	ItemID    int64  `json:"item_id" validate:"gt=0"`
	Category  string `json:"category" validate:"required,category"`
}

// ToFetchRequest converts a decoded body into a FetchRequest for auth.
func (b *FetchBody) ToFetchRequest(auth Auth) FetchRequest {
	return FetchRequest{Component: b.Component, ItemType: b.ItemType, Scope: b.Scope, IDs: b.IDs, Auth: auth}
}

// ToToggleRequest converts a decoded body into a ToggleRequest for auth.
func (b *ToggleBody) ToToggleRequest(auth Auth) ToggleRequest {
	return ToggleRequest{Component: b.Component, ItemType: b.ItemType, ItemID: b.ItemID, Category: b.Category, Auth: auth}
}
