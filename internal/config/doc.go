// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package config provides layered configuration loading for Reactbar.

Configuration is assembled with Koanf v2 from three layers, later layers
winning: built-in defaults, an optional YAML file, and environment variables.
The result is validated with go-playground/validator tags plus a few
cross-field rules.

# Configuration File

	view:
	  component: comments
	  item_type: post
	  scope: item
	  can_react: true
	  multi_react: false
	  poll_interval_seconds: 30
	  namespace: example.org
	  emojis:
	    - {key: heart, glyph: "❤️"}
	    - {key: "+1", glyph: "👍"}
	store:
	  backend: badger
	  path: /data/reactbar
	counting:
	  url: http://127.0.0.1:8337

# Environment Variables

View:
  - COMPONENT, ITEM_TYPE, SCOPE (item|group), NAMESPACE
  - CAN_REACT, MULTI_REACT, COMPACT
  - POLL_INTERVAL: seconds between refreshes, 0 disables polling (default: 30)
  - EMOJIS: ordered "key=glyph" list, e.g. "heart=❤️,+1=👍"

Local Store:
  - STORE_BACKEND: badger, sqlite, memory, none (default: badger)
  - STORE_PATH: badger directory or sqlite file (default: /data/reactbar)
  - STORE_TTL: snapshot lifetime (default: 168h)
  - STORE_SYNC_WRITES, STORE_COMPRESSION

Counting service:
  - COUNTING_URL, COUNTING_TIMEOUT, COUNTING_MAX_RETRIES,
    COUNTING_RETRY_BASE_DELAY, COUNTING_RATE_LIMIT, COUNTING_RATE_BURST,
    COUNTING_AUTH_TOKEN, COUNTING_USER_ID

Reference server:
  - HTTP_HOST, HTTP_PORT, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    SHUTDOWN_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

CONFIG_PATH selects the YAML file; otherwise reactbar.yaml, reactbar.yml and
/etc/reactbar/config.yaml are tried in order.
*/
package config
