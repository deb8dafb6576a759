// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock parameter instead of calling time.Now
// or time.After directly. In production, Real() provides standard
// library behavior. In tests, Fake() provides a deterministic clock
// that advances only when Advance is called, so code built around
// polling intervals and bounded waits can be tested without real
// sleeps.
//
// # Wiring Pattern
//
// Add a Clock field to structs that schedule work:
//
//	type RoomWatcher struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	w := &RoomWatcher{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	w := &RoomWatcher{clock: c}
//	// ... start the goroutine under test ...
//	c.WaitForTimers(1)         // wait for it to block on After
//	c.Advance(2 * time.Second) // fire the timer deterministically
//
// # FakeClock Synchronization
//
// When a goroutine calls After on a FakeClock, it registers a pending
// waiter. Use WaitForTimers to block until a specific number of
// waiters are registered before calling Advance. This eliminates the
// race between timer registration and time advancement that plagues
// tests using real sleeps for synchronization.
package clock
