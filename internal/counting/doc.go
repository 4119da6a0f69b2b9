// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package counting defines the contract with the counting service (the
server that stores individual reaction rows and aggregates them into
per-category counts) and an HTTP client for it.

# Wire Protocol

Both calls are JSON POSTs answered with a models.APIResponse envelope:

	POST /api/v1/reactions/fetch   FetchBody  -> {"items": [ItemState...]}
	POST /api/v1/reactions/toggle  ToggleBody -> ToggleResult

The viewer is identified by the X-Reactbar-User header and, when set, a
bearer token.

# Resilience

HTTPClient applies a client-side token bucket (golang.org/x/time/rate) and
retries HTTP 429 responses with exponential backoff, honouring Retry-After.
CircuitBreakerClient wraps any Service with sony/gobreaker so that a
failing service is not hammered by every poll tick. Client errors
(invalid category, not permitted) do not count against the breaker.

# Errors

	errors.Is(err, counting.ErrInvalidCategory) // HTTP 400, code invalid_category
	errors.Is(err, counting.ErrNotPermitted)    // HTTP 403, code not_permitted

Every other non-2xx answer is a *ServiceError carrying status and code.
*/
package counting
