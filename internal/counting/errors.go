// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package counting

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used in APIError bodies.
const (
	CodeInvalidCategory = "invalid_category"
	CodeNotPermitted    = "not_permitted"
	CodeValidation      = "validation_error"
	CodeInternal        = "internal_error"
)

var (
	// ErrInvalidCategory is returned when a toggle names a category outside
	// the configured set.
	ErrInvalidCategory = errors.New("invalid reaction category")

	// ErrNotPermitted is returned when the viewer may not react.
	ErrNotPermitted = errors.New("not permitted to react")
)

// ServiceError is a non-2xx answer from the counting service.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("counting service: HTTP %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("counting service: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// Is maps well-known codes onto the package sentinels.
func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrInvalidCategory:
		return e.Code == CodeInvalidCategory
	case ErrNotPermitted:
		return e.Code == CodeNotPermitted
	}
	return false
}

// IsClientError reports whether err was caused by the request rather than
// by the service: bad input or missing permission.
func IsClientError(err error) bool {
	if errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrNotPermitted) {
		return true
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Status >= 400 && se.Status < 500 && se.Status != http.StatusTooManyRequests
	}
	return false
}

// StatusFor returns the HTTP status the reference server answers err with.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return http.StatusBadRequest, CodeInvalidCategory
	case errors.Is(err, ErrNotPermitted):
		return http.StatusForbidden, CodeNotPermitted
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
