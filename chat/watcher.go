// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lairchat/lair-go/lib/clock"
)

// WatcherState is the lifecycle state of a RoomWatcher.
type WatcherState int

const (
	// WatcherIdle is the zero state before the goroutine starts.
	WatcherIdle WatcherState = iota
	// WatcherRunning means the fetch/deliver/sleep cycle is active.
	WatcherRunning
	// WatcherStopping means stop was requested but the goroutine has
	// not yet observed it at a cycle boundary.
	WatcherStopping
	// WatcherStopped means the goroutine has exited. Terminal.
	WatcherStopped
)

// String returns the state name for logs and errors.
func (s WatcherState) String() string {
	switch s {
	case WatcherIdle:
		return "idle"
	case WatcherRunning:
		return "running"
	case WatcherStopping:
		return "stopping"
	case WatcherStopped:
		return "stopped"
	}
	return fmt.Sprintf("WatcherState(%d)", int(s))
}

// Defaults for WatchOptions.
const (
	// DefaultWatchInterval is the sleep between fetch cycles.
	DefaultWatchInterval = 2 * time.Second

	// DefaultWatchLimit is the fetch window size: the watcher asks the
	// server for at most this many of the newest messages per cycle.
	DefaultWatchLimit = 10

	// DefaultStopGrace is added to one interval to form the bounded
	// wait in Stop. It covers the callback and fetch time of a cycle
	// already in flight when stop is requested.
	DefaultStopGrace = 500 * time.Millisecond
)

// WatchOptions configures a RoomWatcher.
type WatchOptions struct {
	// RoomID is the room to watch. Required.
	RoomID string

	// OnMessage receives each newly observed message, in ascending
	// arrival order, exactly once over the watcher's lifetime.
	// Deliveries run on the watcher goroutine and are never
	// concurrent with each other. The callback must not call back
	// into the watcher. Required.
	OnMessage func(Message)

	// Interval is the sleep between fetch cycles. Zero uses
	// DefaultWatchInterval; negative is rejected.
	Interval time.Duration

	// Limit is the fetch window size. Zero uses DefaultWatchLimit;
	// negative is rejected. An outage longer than the time the room
	// takes to produce Limit new messages permanently skips the
	// overflow — an accepted consequence of windowed fetching.
	Limit int

	// StopGrace extends the bounded wait in Stop beyond one interval.
	// Zero uses DefaultStopGrace.
	StopGrace time.Duration

	// Logger is the observability sink: one event per swallowed fetch
	// failure, one on fatal auth failure, one on stop timeout. If
	// nil, slog.Default() is used.
	Logger *slog.Logger

	// Clock provides time. If nil, clock.Real() is used. Tests inject
	// clock.Fake for deterministic cycles.
	Clock clock.Clock
}

// RoomWatcher continuously surfaces new messages for one room to a
// consumer: a fetch/deliver/sleep cycle on a dedicated goroutine,
// with duplicate-free in-order delivery tracked by an identifier
// cursor, transparent retry past transient fetch failures, and
// cooperative cancellation with a bounded stop wait.
//
// The consumer only ever sees successful deliveries or silence:
// transient fetch errors never cross the watcher boundary. The one
// exception is an authentication failure, which retrying cannot fix —
// the watcher stops itself and exposes the error via Err.
type RoomWatcher struct {
	source    MessageSource
	roomID    string
	onMessage func(Message)
	interval  time.Duration
	limit     int
	stopGrace time.Duration
	logger    *slog.Logger
	clock     clock.Clock

	// cancel aborts an in-flight fetch when stop is requested. A
	// fetch allowed to complete anyway has its results discarded.
	cancel context.CancelFunc

	// stopRequested is closed by Stop; the goroutine observes it
	// before each fetch, after each fetch returns, and at the sleep.
	stopRequested chan struct{}
	stopOnce      sync.Once

	// done is closed when the goroutine exits.
	done chan struct{}

	mu       sync.Mutex
	state    WatcherState
	fatalErr error

	// cursor is owned by the watcher goroutine. Nothing else touches
	// it after the goroutine starts.
	cursor syncCursor
}

// WatchRoom constructs a watcher from options and starts its
// goroutine. The first fetch runs immediately — it is not delayed by
// one interval. Invalid options are rejected with an error wrapping
// ErrInvalidArgument and no goroutine is created.
func WatchRoom(source MessageSource, options WatchOptions) (*RoomWatcher, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: message source is required", ErrInvalidArgument)
	}
	if options.RoomID == "" {
		return nil, fmt.Errorf("%w: room ID is required", ErrInvalidArgument)
	}
	if options.OnMessage == nil {
		return nil, fmt.Errorf("%w: OnMessage callback is required", ErrInvalidArgument)
	}
	if options.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidArgument, options.Interval)
	}
	if options.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, options.Limit)
	}

	if options.Interval == 0 {
		options.Interval = DefaultWatchInterval
	}
	if options.Limit == 0 {
		options.Limit = DefaultWatchLimit
	}
	if options.StopGrace == 0 {
		options.StopGrace = DefaultStopGrace
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}

	ctx, cancel := context.WithCancel(context.Background())
	watcher := &RoomWatcher{
		source:        source,
		roomID:        options.RoomID,
		onMessage:     options.OnMessage,
		interval:      options.Interval,
		limit:         options.Limit,
		stopGrace:     options.StopGrace,
		logger:        options.Logger.With("room_id", options.RoomID),
		clock:         options.Clock,
		cancel:        cancel,
		stopRequested: make(chan struct{}),
		done:          make(chan struct{}),
		state:         WatcherRunning,
		cursor:        syncCursor{capacity: options.Limit},
	}

	go watcher.run(ctx)

	watcher.logger.Info("room watcher started",
		"interval", options.Interval,
		"limit", options.Limit,
	)
	return watcher, nil
}

// Stop requests shutdown and waits for the watcher goroutine to exit.
// After Stop returns nil, no further OnMessage invocation occurs. The
// wait is bounded by one interval plus the stop grace period: if the
// goroutine has not exited by then (a callback or fetch stuck beyond
// the cancelled context), Stop logs a warning and returns
// ErrShutdownTimeout. The stop request remains in effect either way.
// Stop on an already-stopped watcher returns nil immediately.
func (w *RoomWatcher) Stop() error {
	w.mu.Lock()
	if w.state == WatcherStopped {
		w.mu.Unlock()
		return nil
	}
	if w.state == WatcherRunning {
		w.state = WatcherStopping
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.stopRequested)
		w.cancel()
	})

	select {
	case <-w.done:
		return nil
	case <-w.clock.After(w.interval + w.stopGrace):
		w.logger.Warn("room watcher stop timed out",
			"waited", w.interval+w.stopGrace,
		)
		return ErrShutdownTimeout
	}
}

// State returns the watcher's current lifecycle state.
func (w *RoomWatcher) State() WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Err returns the terminal error, if any. Non-nil only after a fatal
// authentication failure stopped the watcher.
func (w *RoomWatcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fatalErr
}

// Done returns a channel closed when the watcher goroutine has exited.
func (w *RoomWatcher) Done() <-chan struct{} {
	return w.done
}

// RoomID returns the room being watched.
func (w *RoomWatcher) RoomID() string {
	return w.roomID
}

// run is the watcher goroutine: fetch, deliver, sleep, repeat. The
// stop signal is observed before each fetch, after each fetch
// returns, and at the sleep, so shutdown latency never exceeds one
// suspension point.
func (w *RoomWatcher) run(ctx context.Context) {
	defer close(w.done)
	defer w.setStopped()
	defer w.cancel()

	for {
		if w.stopping() {
			return
		}

		messages, err := w.source.Messages(ctx, w.roomID, w.limit)

		// A fetch that completed after stop was requested has its
		// results discarded: nothing may be delivered once Stopping
		// is observed.
		if w.stopping() {
			return
		}

		switch {
		case err == nil:
			if !w.deliver(messages) {
				return
			}
		case IsAuthError(err):
			// Retrying cannot recover an invalid token. Report,
			// record the terminal error, and stop.
			w.logger.Error("room watcher stopping on authentication failure", "error", err)
			w.mu.Lock()
			w.fatalErr = err
			w.mu.Unlock()
			return
		default:
			// Transient: report and retry next cycle. This covers
			// network failures, 5xx responses, and decode failures
			// alike — a long-running poll must survive all of them.
			w.logger.Warn("room watcher fetch failed, will retry",
				"interval", w.interval,
				"error", err,
			)
		}

		select {
		case <-w.stopRequested:
			return
		case <-w.clock.After(w.interval):
		}
	}
}

// deliver hands the undelivered suffix of the fetched window to the
// callback, in order, advancing the cursor after each delivery. The
// stop signal is checked between deliveries; returns false when stop
// was observed.
func (w *RoomWatcher) deliver(window []Message) bool {
	fresh := w.cursor.undelivered(window)
	if len(fresh) == 0 {
		return true
	}

	w.logger.Debug("room watcher delivering messages",
		"window", len(window),
		"new", len(fresh),
	)

	for _, message := range fresh {
		if w.stopping() {
			return false
		}
		w.onMessage(message)
		w.cursor.advance(message.ID)
	}
	return true
}

// stopping reports whether stop has been requested.
func (w *RoomWatcher) stopping() bool {
	select {
	case <-w.stopRequested:
		return true
	default:
		return false
	}
}

// setStopped marks the terminal state. Called exactly once, from the
// goroutine's exit path.
func (w *RoomWatcher) setStopped() {
	w.mu.Lock()
	w.state = WatcherStopped
	w.mu.Unlock()
}

// syncCursor tracks delivery progress for one watcher: the identifier
// of the last delivered message plus a bounded ring of recently
// delivered identifiers. The ring covers one fetch window, so a
// window that shrank past the tail (server-side history trimming) is
// recognized as already seen rather than redelivered. The cursor only
// ever advances — a short or empty window never rewinds it.
type syncCursor struct {
	lastID   string
	seen     []string
	capacity int
}

// undelivered returns the suffix of window not yet delivered.
//
// The common case: lastID appears in the window, and everything after
// its last occurrence is new. When lastID is absent the window either
// moved entirely past the cursor (a gap — all of it is new) or the
// server trimmed history so the window now ends before the cursor;
// the seen ring distinguishes the two by filtering identifiers
// already delivered.
func (c *syncCursor) undelivered(window []Message) []Message {
	if c.lastID == "" {
		return window
	}

	for i := len(window) - 1; i >= 0; i-- {
		if window[i].ID == c.lastID {
			return window[i+1:]
		}
	}

	var fresh []Message
	for _, message := range window {
		if !c.delivered(message.ID) {
			fresh = append(fresh, message)
		}
	}
	return fresh
}

// advance records a delivered message identifier.
func (c *syncCursor) advance(id string) {
	c.lastID = id
	c.seen = append(c.seen, id)
	if c.capacity > 0 && len(c.seen) > c.capacity {
		c.seen = c.seen[len(c.seen)-c.capacity:]
	}
}

// delivered reports whether id is in the seen ring.
func (c *syncCursor) delivered(id string) bool {
	for _, seen := range c.seen {
		if seen == id {
			return true
		}
	}
	return false
}
