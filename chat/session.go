// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/lairchat/lair-go/lib/secret"
)

// Session is the interface for authenticated Lair Chat operations.
// *UserSession is the direct-connection implementation; tests
// substitute fakes for the pieces they exercise.
type Session interface {
	// User returns the account the session was authenticated as.
	User() User

	// Close stops any running watcher and releases the protected
	// access token memory. Idempotent.
	Close() error

	// Profile fetches the current user's profile from the server.
	Profile(ctx context.Context) (*User, error)

	// Rooms returns the rooms visible to the user.
	Rooms(ctx context.Context) ([]Room, error)

	// CreateRoom creates a new room and returns it.
	CreateRoom(ctx context.Context, request CreateRoomRequest) (*Room, error)

	// JoinRoom joins a room by ID.
	JoinRoom(ctx context.Context, roomID string) error

	// Messages fetches the most recent messages from a room, oldest
	// first, bounded by limit.
	Messages(ctx context.Context, roomID string, limit int) ([]Message, error)

	// SendMessage posts a message to a room.
	SendMessage(ctx context.Context, roomID, content string) error

	// Logout invalidates the session on the server. The local session
	// remains usable as an object but all further calls will fail.
	Logout(ctx context.Context) error

	// WatchRoom starts a polling watcher for a room, stopping any
	// watcher previously started through this session first.
	WatchRoom(options WatchOptions) (*RoomWatcher, error)
}

// MessageSource is the narrow fetch contract a RoomWatcher depends on.
// It is the only part of Session the watcher uses, which keeps watcher
// tests independent of the HTTP transport.
type MessageSource interface {
	Messages(ctx context.Context, roomID string, limit int) ([]Message, error)
}

// Compile-time checks: *UserSession implements both contracts.
var (
	_ Session       = (*UserSession)(nil)
	_ MessageSource = (*UserSession)(nil)
)

// UserSession is an authenticated connection to the server: a pointer
// to the parent Client plus the access token in protected memory.
// One session corresponds to one logical login; there is no ambient
// global state.
type UserSession struct {
	client      *Client
	accessToken *secret.Buffer
	user        User

	// watchMu serializes WatchRoom and Close so that at most one
	// watcher runs per session at any time.
	watchMu sync.Mutex
	watcher *RoomWatcher

	closeOnce sync.Once
	closeErr  error
}

// User returns the account the session was authenticated as.
func (s *UserSession) User() User {
	return s.user
}

// Token returns the access token as an ordinary heap string. Use only
// where the token must leave protected memory, such as handing it to
// another process through the environment. Panics after Close.
func (s *UserSession) Token() string {
	return s.accessToken.String()
}

// Close stops any running watcher, then zeroes and releases the
// access token memory. Idempotent.
func (s *UserSession) Close() error {
	s.closeOnce.Do(func() {
		s.watchMu.Lock()
		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil && !errors.Is(err, ErrShutdownTimeout) {
				s.closeErr = err
			}
			s.watcher = nil
		}
		s.watchMu.Unlock()

		if s.accessToken != nil {
			if err := s.accessToken.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

// Profile fetches the current user's profile.
func (s *UserSession) Profile(ctx context.Context) (*User, error) {
	body, err := s.doRequest(ctx, http.MethodGet, "/users/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("chat: fetching profile: %w", err)
	}

	var response struct {
		Data User `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: parsing profile response: %w: %w", ErrDecode, err)
	}
	return &response.Data, nil
}

// Rooms returns the rooms visible to the user.
func (s *UserSession) Rooms(ctx context.Context) ([]Room, error) {
	body, err := s.doRequest(ctx, http.MethodGet, "/rooms", nil)
	if err != nil {
		return nil, fmt.Errorf("chat: listing rooms: %w", err)
	}

	var response struct {
		Data []Room `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: parsing rooms response: %w: %w", ErrDecode, err)
	}
	return response.Data, nil
}

// CreateRoom creates a new room and returns it.
func (s *UserSession) CreateRoom(ctx context.Context, request CreateRoomRequest) (*Room, error) {
	if request.Name == "" {
		return nil, fmt.Errorf("chat: room name is required")
	}

	body, err := s.doRequest(ctx, http.MethodPost, "/rooms", request)
	if err != nil {
		return nil, fmt.Errorf("chat: creating room %q: %w", request.Name, err)
	}

	var response struct {
		Data Room `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: parsing create room response: %w: %w", ErrDecode, err)
	}

	s.client.logger.Info("created room",
		"room_id", response.Data.ID,
		"name", response.Data.Name,
	)
	return &response.Data, nil
}

// JoinRoom joins a room by ID.
func (s *UserSession) JoinRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("chat: room ID is required")
	}

	if _, err := s.doRequest(ctx, http.MethodPost, "/rooms/"+url.PathEscape(roomID)+"/join", nil); err != nil {
		return fmt.Errorf("chat: joining room %s: %w", roomID, err)
	}
	return nil
}

// Messages fetches the most recent messages from a room, oldest first.
// limit bounds the window size; the server returns at most that many
// of the newest messages. A limit <= 0 uses the server default.
func (s *UserSession) Messages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	if roomID == "" {
		return nil, fmt.Errorf("chat: room ID is required")
	}

	query := url.Values{}
	query.Set("room_id", roomID)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	body, err := s.doRequest(ctx, http.MethodGet, "/messages", nil, query)
	if err != nil {
		return nil, fmt.Errorf("chat: fetching messages for room %s: %w", roomID, err)
	}

	var response struct {
		Data []Message `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: parsing messages response: %w: %w", ErrDecode, err)
	}
	return response.Data, nil
}

// SendMessage posts a message to a room.
func (s *UserSession) SendMessage(ctx context.Context, roomID, content string) error {
	if roomID == "" {
		return fmt.Errorf("chat: room ID is required")
	}
	if content == "" {
		return fmt.Errorf("chat: message content is required")
	}

	sendRequest := map[string]any{
		"room_id": roomID,
		"content": content,
	}
	if _, err := s.doRequest(ctx, http.MethodPost, "/messages", sendRequest); err != nil {
		return fmt.Errorf("chat: sending message to room %s: %w", roomID, err)
	}
	return nil
}

// Logout invalidates the session on the server.
func (s *UserSession) Logout(ctx context.Context) error {
	if _, err := s.doRequest(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		return fmt.Errorf("chat: logout: %w", err)
	}
	s.client.logger.Info("logged out", "user_id", s.user.ID)
	return nil
}

// WatchRoom starts a polling watcher for a room using this session as
// its message source. At most one watcher runs per session: if a
// previous watcher is still running it is stopped synchronously
// (bounded) before the new one starts, so no two watchers deliver
// concurrently under one session.
func (s *UserSession) WatchRoom(options WatchOptions) (*RoomWatcher, error) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watcher != nil {
		// Restart supersedes: retire the previous watcher before the
		// new one may deliver. A stop timeout is logged by Stop and
		// does not block the restart — the old goroutine can no
		// longer deliver once its stop signal is set.
		if err := s.watcher.Stop(); err != nil && !errors.Is(err, ErrShutdownTimeout) {
			return nil, fmt.Errorf("chat: stopping previous watcher: %w", err)
		}
		s.watcher = nil
	}

	if options.Logger == nil {
		options.Logger = s.client.logger
	}

	watcher, err := WatchRoom(s, options)
	if err != nil {
		return nil, err
	}
	s.watcher = watcher
	return watcher, nil
}

// doRequest delegates to the client's request helper with this
// session's access token attached.
func (s *UserSession) doRequest(ctx context.Context, method, path string, requestBody any, query ...url.Values) ([]byte, error) {
	return s.client.doRequest(ctx, method, path, s.accessToken, requestBody, query...)
}
