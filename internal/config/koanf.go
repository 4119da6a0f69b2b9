// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"reactbar.yaml",
	"reactbar.yml",
	"/etc/reactbar/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultEmojis is the category set used when none is configured.
var DefaultEmojis = []Emoji{
	{Key: "heart", Glyph: "❤️"},
	{Key: "+1", Glyph: "👍"},
	{Key: "laughing", Glyph: "😆"},
	{Key: "open_mouth", Glyph: "😮"},
	{Key: "cry", Glyph: "😢"},
}

func defaultConfig() *Config {
	emojis := make([]Emoji, len(DefaultEmojis))
	copy(emojis, DefaultEmojis)

	return &Config{
		View: ViewConfig{
			Component:           "comments",
			ItemType:            "post",
			Scope:               "item",
			CanReact:            true,
			MultiReact:          true,
			Compact:             false,
			PollIntervalSeconds: 30,
			Emojis:              emojis,
			Namespace:           "reactbar",
		},
		Store: StoreConfig{
			Backend:     BackendBadger,
			Path:        "/data/reactbar",
			TTL:         7 * 24 * time.Hour,
			SyncWrites:  false,
			Compression: true,
		},
		Counting: CountingConfig{
			URL:            "http://127.0.0.1:8337",
			Timeout:        10 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
			RateLimit:      5,
			RateBurst:      10,
		},
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              8337,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			ShutdownTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: defaultConfig()
//  2. Config File: optional YAML file
//  3. Environment Variables: highest priority
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file path. An empty path
// skips the file layer.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// POLL_INTERVAL -> view.poll_interval_seconds, STORE_PATH -> store.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processEmojiField(k); err != nil {
		return nil, fmt.Errorf("failed to process emojis: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// WatchConfigFile invokes callback whenever the file at path changes.
// The caller synchronises access to any configuration it reloads.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
