// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package config

import (
	"fmt"

	"github.com/tomtom215/reactbar/internal/validation"
)

// Validate checks field-level tags and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateView()
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendBadger, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_BACKEND=%s", c.Store.Backend)
		}
	}
	return nil
}

func (c *Config) validateView() error {
	if c.View.CanReact && c.Counting.URL == "" {
		return fmt.Errorf("COUNTING_URL is required when CAN_REACT=true")
	}
	return nil
}
