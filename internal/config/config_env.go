// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

// envMappings maps flat environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// View
	"component":     "view.component",
	"item_type":     "view.item_type",
	"scope":         "view.scope",
	"can_react":     "view.can_react",
	"multi_react":   "view.multi_react",
	"compact":       "view.compact",
	"poll_interval": "view.poll_interval_seconds",
	"emojis":        "view.emojis",
	"namespace":     "view.namespace",

	// Store
	"store_backend":     "store.backend",
	"store_path":        "store.path",
	"store_ttl":         "store.ttl",
	"store_sync_writes": "store.sync_writes",
	"store_compression": "store.compression",

	// Counting service client
	"counting_url":              "counting.url",
	"counting_timeout":          "counting.timeout",
	"counting_max_retries":      "counting.max_retries",
	"counting_retry_base_delay": "counting.retry_base_delay",
	"counting_rate_limit":       "counting.rate_limit",
	"counting_rate_burst":       "counting.rate_burst",
	"counting_auth_token":       "counting.auth_token",
	"counting_user_id":          "counting.user_id",

	// Reference server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"shutdown_timeout":    "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf paths.
// Unmapped names return "" so unrelated variables never reach the config.
//
// Examples:
//   - POLL_INTERVAL -> view.poll_interval_seconds
//   - STORE_BACKEND -> store.backend
//   - COUNTING_URL  -> counting.url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// processEmojiField converts the EMOJIS env form "heart=❤️,+1=👍" into the
// list-of-objects shape the YAML file uses. Lists already loaded from YAML
// or defaults are left alone.
func processEmojiField(k *koanf.Koanf) error {
	raw, ok := k.Get("view.emojis").(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	emojis, err := ParseEmojis(raw)
	if err != nil {
		return err
	}
	list := make([]interface{}, len(emojis))
	for i, e := range emojis {
		list[i] = map[string]interface{}{"key": e.Key, "glyph": e.Glyph}
	}
	// Delete first so Set replaces the defaults instead of merging into them.
	k.Delete("view.emojis")
	return k.Set("view.emojis", list)
}

// ParseEmojis parses "key=glyph,key=glyph". Order is preserved.
func ParseEmojis(raw string) ([]Emoji, error) {
	var out []Emoji
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, glyph, found := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		glyph = strings.TrimSpace(glyph)
		if !found || key == "" || glyph == "" {
			return nil, fmt.Errorf("invalid emoji entry %q: want key=glyph", item)
		}
		out = append(out, Emoji{Key: key, Glyph: glyph})
	}
	return out, nil
}
