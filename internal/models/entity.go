// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package models

import (
	"net/url"
	"strconv"
	"strings"
)

// Reaction scopes.
const (
	ScopeItem  = "item"
	ScopeGroup = "group"
)

// Provenance tags a rendered bar with where its counts came from.
type Provenance string

const (
	// ProvenanceCache marks a bar painted from the local store. Its controls
	// are never interactive.
	ProvenanceCache Provenance = "cache"

	// ProvenanceLive marks a bar verified against the counting service.
	ProvenanceLive Provenance = "live"
)

// EntityRef identifies one reaction bar: a post (item scope) or a
// discussion/thread (group scope) of a given component and item type.
type EntityRef struct {
	Component string
	ItemType  string
	Scope     string
	ID        int64
}

// CacheKey derives the local store key for ref under namespace.
//
// Free-form parts are query-escaped so that ':' inside a namespace or item
// type can never make two different entities share a key:
//
//	CacheKey("example.org", EntityRef{"comments", "post", "item", 42})
//	// "example.org:comments:post:item:42"
func CacheKey(namespace string, ref EntityRef) string {
	var b strings.Builder
	b.WriteString(url.QueryEscape(namespace))
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(ref.Component))
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(ref.ItemType))
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(ref.Scope))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(ref.ID, 10))
	return b.String()
}
