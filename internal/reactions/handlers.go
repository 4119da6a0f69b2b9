// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package reactions

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reactbar/internal/counting"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/models"
	"github.com/tomtom215/reactbar/internal/validation"
)

// maxRequestBytes bounds request bodies.
const maxRequestBytes = 64 << 10

type handler struct {
	svc   counting.Service
	token string
}

type authKey struct{}

// authenticate checks the optional bearer token and reads the viewer ID.
func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
				respondError(w, r, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
		}

		var auth counting.Auth
		if raw := r.Header.Get(counting.UserHeader); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id < 0 {
				respondError(w, r, http.StatusBadRequest, counting.CodeValidation, counting.UserHeader+" must be a non-negative integer", nil)
				return
			}
			auth.UserID = id
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authKey{}, auth)))
	})
}

func authFrom(ctx context.Context) counting.Auth {
	auth, _ := ctx.Value(authKey{}).(counting.Auth)
	return auth
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ok"},
		Metadata: models.Metadata{Timestamp: time.Now(), RequestID: logging.RequestIDFromContext(r.Context())},
	})
}

func (h *handler) fetch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body counting.FetchBody
	if !decodeAndValidate(w, r, &body) {
		return
	}

	items, err := h.svc.Fetch(r.Context(), body.ToFetchRequest(authFrom(r.Context())))
	if err != nil {
		status, code := counting.StatusFor(err)
		respondError(w, r, status, code, "fetch failed", err)
		return
	}

	data := models.FetchItemsData{Items: make([]models.ItemState, 0, len(items))}
	for _, item := range items {
		data.Items = append(data.Items, item)
	}
	sort.Slice(data.Items, func(i, j int) bool { return data.Items[i].ID < data.Items[j].ID })

	respondSuccess(w, r, data, start)
}

func (h *handler) toggle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body counting.ToggleBody
	if !decodeAndValidate(w, r, &body) {
		return
	}

	result, err := h.svc.Toggle(r.Context(), body.ToToggleRequest(authFrom(r.Context())))
	if err != nil {
		status, code := counting.StatusFor(err)
		respondError(w, r, status, code, err.Error(), err)
		return
	}
	respondSuccess(w, r, result, start)
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, counting.CodeValidation, "invalid JSON body", nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now(), RequestID: logging.RequestIDFromContext(r.Context())},
			Error:    &models.APIError{Code: apiErr.Code, Message: apiErr.Message, Fields: apiErr.Fields},
		})
		return false
	}
	return true
}

func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("API error")
	} else if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("code", code).Msg("Request rejected")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now(), RequestID: logging.RequestIDFromContext(r.Context())},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
