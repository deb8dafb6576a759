// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat wraps the Lair Chat REST API for Go clients.
//
// The package provides two core types. [Client] is an unauthenticated
// API client that handles registration and login, returning
// authenticated [Session] values. Client holds the server URL and HTTP
// transport, shared across all Sessions derived from it.
//
// [Session] wraps a Client with an access token for authenticated
// operations: profile retrieval, room management (list, create, join),
// and messaging (send, fetch a bounded recent window). Sessions are
// lightweight (a pointer to the parent Client plus an access token in
// mmap-backed secret.Buffer memory); callers must call Session.Close
// to release the protected memory.
//
// [RoomWatcher] is the polling synchronization loop for one room's
// message stream: it repeatedly fetches the most recent window of
// messages through the narrow [MessageSource] contract, delivers the
// not-yet-delivered suffix to a callback exactly once and in order,
// swallows transient fetch failures, and shuts down cooperatively with
// a bounded stop wait. Create one with [WatchRoom] directly, or with
// Session.WatchRoom which additionally enforces that at most one
// watcher runs per session ("restart supersedes").
//
// All server-reported failures are returned as [*APIError] with the
// API error code (when the server provides one) and HTTP status code.
// [IsAuthError] and [IsServerError] classify them; decode failures
// wrap [ErrDecode] so a malformed response is distinguishable from a
// network failure.
package chat
