// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lairchat/lair-go/lib/secret"
)

// Message is a single chat message as returned by the server. Messages
// are immutable once observed: the server assigns the identifier, and
// identifiers are monotonically non-decreasing within a room in
// arrival order.
type Message struct {
	// ID is the server-assigned message identifier. Opaque to the
	// client — only equality is meaningful.
	ID string `json:"id"`
	// RoomID is the room the message belongs to.
	RoomID string `json:"room_id"`
	// Author is the display label of the sender.
	Author string `json:"author"`
	// Content is the message text.
	Content string `json:"content"`
	// Timestamp is the server timestamp as an ISO-8601 string. It may
	// be malformed — use Time to parse it, and fall back to the raw
	// string for display when parsing fails.
	Timestamp string `json:"timestamp"`
}

// Time parses the message timestamp. Returns false when the timestamp
// is missing or malformed, in which case callers should display the
// raw Timestamp string instead.
func (m Message) Time() (time.Time, bool) {
	if m.Timestamp == "" {
		return time.Time{}, false
	}
	// Servers commonly emit a trailing "Z" for UTC; RFC 3339 accepts
	// it directly. Also accept a bare offset-less form.
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, m.Timestamp); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// User is an account on the server.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Room is a named channel grouping messages and participants.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	Private     bool   `json:"is_private,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// RegisterRequest holds parameters for creating a new account. The
// password is stored in an mmap-backed buffer (locked against swap,
// excluded from core dumps). The caller retains ownership of the
// buffer — Register reads from it but does not close it.
type RegisterRequest struct {
	Username string
	Email    string
	Password *secret.Buffer
}

// CreateRoomRequest holds parameters for creating a room.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AuthResponse is returned by Login. The access token is copied into
// protected memory by the client; the struct itself is transient.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	User         User   `json:"user"`
}

// HealthStatus is returned by Health.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// OK reports whether the server considers itself healthy.
func (h HealthStatus) OK() bool {
	return strings.EqualFold(h.Status, "ok")
}

// envelope is the response wrapper every endpoint shares:
// {"success": bool, "data": ..., "error": {"code", "message"}}.
// Success defaults to true when absent — some endpoints (login) put
// their payload at the top level without the wrapper fields.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiErrorBody   `json:"error"`
}

// apiErrorBody is the error object inside the envelope.
type apiErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// failed reports whether the envelope carries an API-level failure.
func (e *envelope) failed() bool {
	return e.Success != nil && !*e.Success
}
