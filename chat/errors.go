// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the Lair Chat
// server. Callers can use errors.As to extract the structured
// information:
//
//	var apiErr *chat.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusNotFound { ... }
//	}
type APIError struct {
	// Code is the API error code (e.g., "invalid_credentials"). Empty
	// when the server reports only a message.
	Code string `json:"code"`
	// Message is the human-readable error description from the server.
	Message string `json:"message"`
	// RequestID correlates the failure with server-side logs, when the
	// server provides one.
	RequestID string `json:"request_id,omitempty"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("lair: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("lair: (%d): %s", e.StatusCode, e.Message)
}

// Sentinel errors for the watcher lifecycle.
var (
	// ErrInvalidArgument is returned by WatchRoom when its options are
	// rejected (negative interval or limit, empty room id, nil
	// callback).
	// No goroutine is created.
	ErrInvalidArgument = errors.New("chat: invalid argument")

	// ErrShutdownTimeout is returned by RoomWatcher.Stop when the
	// watcher goroutine does not exit within the bounded wait. It is a
	// report, not an escalation — the stop request remains in effect
	// and the goroutine will still exit at its next cycle boundary.
	ErrShutdownTimeout = errors.New("chat: watcher stop timed out")

	// ErrDecode wraps response bodies that could not be decoded. A
	// decode failure is distinguishable from a network failure but is
	// equally transient from the watcher's perspective.
	ErrDecode = errors.New("chat: response decoding failed")
)

// IsAPIError checks whether err is an *APIError with the given error code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsAuthError reports whether err is a server-reported authentication
// or authorization failure (HTTP 401 or 403). The watcher treats these
// as fatal: retrying cannot recover an invalid token.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsServerError reports whether err is a server-side failure (HTTP
// 5xx). These are transient from the client's perspective.
func IsServerError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
