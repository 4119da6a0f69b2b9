// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package metrics provides Prometheus instrumentation for Reactbar.

All collectors are registered on the default registry with promauto at
package init. Callers use the Record* helpers rather than touching the
collectors directly.

# Metrics Endpoint

The reference counting server exposes the default registry at /metrics:

	curl http://127.0.0.1:8337/metrics

# Available Metrics

Local Store:
  - reactbar_store_hits_total, reactbar_store_misses_total (counters)
  - reactbar_store_expired_total: entries older than the TTL (counter)
  - reactbar_store_write_failures_total{operation} (counter)
  - reactbar_store_available (gauge)

Counting service:
  - reactbar_fetch_duration_seconds{operation} (histogram)
  - reactbar_fetch_errors_total{operation} (counter)
  - reactbar_rate_limit_retries_total (counter)
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_consecutive_failures{name},
    circuit_breaker_state_transitions_total{name,from_state,to_state}

Pipeline and poller:
  - reactbar_poll_ticks_total{result} (counter)
  - reactbar_pollers_active (gauge)
  - reactbar_bars_rendered_total{provenance} (counter)
  - reactbar_highlights_total{kind} (counter)
  - reactbar_toggles_total{action} (counter)

Reference server:
  - api_requests_total{method,endpoint,status_code} (counter)
  - api_request_duration_seconds{method,endpoint} (histogram)
*/
package metrics
