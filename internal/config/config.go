// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package config

import (
	"fmt"
	"time"
)

// Config holds all Reactbar configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults from defaultConfig()
//  2. Config File: Optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: Flat names mapped by envTransformFunc
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	View     ViewConfig     `koanf:"view"`
	Store    StoreConfig    `koanf:"store"`
	Counting CountingConfig `koanf:"counting"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// Emoji is one configured reaction category.
type Emoji struct {
	// Key is the shortcode stored by the counting service (e.g. "heart").
	Key string `koanf:"key" validate:"required,category"`

	// Glyph is the display text. It is sanitised before rendering.
	Glyph string `koanf:"glyph" validate:"required"`
}

// ViewConfig is the static per-view configuration delivered at
// initialization: which component and entity kind the bars belong to, the
// viewer's permissions, and the emoji set.
type ViewConfig struct {
	Component string `koanf:"component" validate:"required"`
	ItemType  string `koanf:"item_type" validate:"required"`

	// Scope is "item" for per-post bars or "group" for per-thread bars.
	Scope string `koanf:"scope" validate:"oneof=item group"`

	// CanReact is false for anonymous or read-only viewers.
	CanReact bool `koanf:"can_react"`

	// MultiReact allows more than one selected category per entity.
	MultiReact bool `koanf:"multi_react"`

	// Compact renders only categories with a positive count.
	Compact bool `koanf:"compact"`

	// PollIntervalSeconds is the refresh cadence. 0 disables polling.
	PollIntervalSeconds int `koanf:"poll_interval_seconds" validate:"gte=0,lte=86400"`

	// Emojis is the ordered category list.
	Emojis []Emoji `koanf:"emojis" validate:"min=1,unique=Key,dive"`

	// Namespace prefixes every cache key (typically the site identifier).
	Namespace string `koanf:"namespace" validate:"required"`
}

// Categories returns the configured category keys in order.
func (v *ViewConfig) Categories() []string {
	keys := make([]string, len(v.Emojis))
	for i, e := range v.Emojis {
		keys[i] = e.Key
	}
	return keys
}

// HasCategory reports whether key is one of the configured categories.
func (v *ViewConfig) HasCategory(key string) bool {
	for _, e := range v.Emojis {
		if e.Key == key {
			return true
		}
	}
	return false
}

// Toggleable reports whether live bars accept toggles. A group bar
// aggregates several posts, so it is display-only.
func (v *ViewConfig) Toggleable() bool {
	return v.CanReact && v.Scope != "group"
}

// PollInterval returns the poll cadence as a duration.
func (v *ViewConfig) PollInterval() time.Duration {
	return time.Duration(v.PollIntervalSeconds) * time.Second
}

// Store backend names.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// StoreConfig configures the Local Store.
type StoreConfig struct {
	// Backend selects the persistence engine: badger, sqlite, memory, none.
	Backend string `koanf:"backend" validate:"oneof=badger sqlite memory none"`

	// Path is the badger directory or the sqlite file.
	Path string `koanf:"path"`

	// TTL is how long a snapshot stays readable after it was written.
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`

	// SyncWrites forces fsync on every badger write.
	SyncWrites bool `koanf:"sync_writes"`

	// Compression enables badger's zstd block compression.
	Compression bool `koanf:"compression"`
}

// CountingConfig configures the HTTP client for the counting service.
type CountingConfig struct {
	URL            string        `koanf:"url" validate:"omitempty,url"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gte=0"`

	// RateLimit is the client-side request budget per second. 0 disables it.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`

	AuthToken string `koanf:"auth_token"`

	// UserID identifies the viewer to the reference service. 0 is anonymous.
	UserID int64 `koanf:"user_id" validate:"gte=0"`
}

// ServerConfig configures the reference counting server.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gt=0,lte=65535"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns host:port for net/http.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logging.Config for file and env loading.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
