// Package dispatch coalesces bursts of reorder results into a single
// persistence call per space.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lessontree/internal/doctree"
)

const (
	// DefaultDelay is the quiet period before a pending update set is sent.
	DefaultDelay = 300 * time.Millisecond

	// DefaultSendTimeout bounds a single outbound call.
	DefaultSendTimeout = 10 * time.Second

	// DefaultIdleTTL is how long an idle key keeps its last-sent record.
	DefaultIdleTTL = 10 * time.Minute
)

// Sender persists an update set for a key (a space id).
type Sender func(ctx context.Context, key string, updates []doctree.PositionUpdate) error

// Config configures a Dispatcher. Zero values fall back to defaults.
type Config struct {
	Delay       time.Duration
	SendTimeout time.Duration
	IdleTTL     time.Duration
	Clock       Clock
	Logger      *slog.Logger
}

// Dispatcher is a per-key trailing-edge debouncer. Only the last update set
// submitted within the quiet period is sent, and a set identical to the one
// pending (or, with nothing pending, the one last sent) is dropped.
//
// Sends are fire-and-forget: a failure is logged and the caller's optimistic
// state is left alone. The next full refetch reconciles any divergence.
// Sends for one key never overlap and run in submission order.
type Dispatcher struct {
	send    Sender
	delay   time.Duration
	timeout time.Duration
	idleTTL time.Duration
	clock   Clock
	logger  *slog.Logger

	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time
	closed    bool
	wg        sync.WaitGroup
}

type entry struct {
	pending    []doctree.PositionUpdate
	hasPending bool
	stop       func() bool
	generation uint64

	lastSent []doctree.PositionUpdate
	hasSent  bool

	// inflight is closed when the most recently started send returns
	inflight chan struct{}
	touched  time.Time
}

func (e *entry) idle() bool {
	return !e.hasPending && e.inflight == nil
}

// New creates a dispatcher that hands coalesced update sets to send.
func New(send Sender, cfg Config) *Dispatcher {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dispatcher{
		send:      send,
		delay:     cfg.Delay,
		timeout:   cfg.SendTimeout,
		idleTTL:   cfg.IdleTTL,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		entries:   make(map[string]*entry),
		lastSweep: cfg.Clock.Now(),
	}
}

// Submit schedules updates for key, replacing whatever was pending. It
// returns false when the set was suppressed as a duplicate or the dispatcher
// is closed.
func (d *Dispatcher) Submit(key string, updates []doctree.PositionUpdate) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	now := d.clock.Now()
	d.sweep(now)

	e, ok := d.entries[key]
	if !ok {
		e = &entry{}
		d.entries[key] = e
	}
	e.touched = now

	switch {
	case e.hasPending && doctree.EqualUpdates(e.pending, updates):
		return false
	case !e.hasPending && e.hasSent && doctree.EqualUpdates(e.lastSent, updates):
		return false
	}

	e.pending = cloneUpdates(updates)
	e.hasPending = true
	if e.stop != nil {
		e.stop()
	}
	e.generation++
	gen := e.generation
	e.stop = d.clock.AfterFunc(d.delay, func() { d.fire(key, gen) })

	d.logger.Debug("reorder scheduled", "key", key, "updates", len(updates))
	return true
}

// Cancel drops the pending set for key without sending it. It reports
// whether anything was pending.
func (d *Dispatcher) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	if !ok {
		return false
	}
	cancelled := e.hasPending
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.pending = nil
	e.hasPending = false
	e.generation++
	if e.idle() {
		delete(d.entries, key)
	}
	return cancelled
}

// Forget drops the record of the last set sent for key, so the next Submit
// is only compared against what is pending.
func (d *Dispatcher) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	if !ok {
		return
	}
	e.lastSent = nil
	e.hasSent = false
	if e.idle() {
		delete(d.entries, key)
	}
}

// Pending reports whether key has an unsent update set.
func (d *Dispatcher) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[key]
	return ok && e.hasPending
}

// Sync sends key's pending set now and waits until no send for key is in
// flight. The returned error is the send's; it has already been logged.
func (d *Dispatcher) Sync(ctx context.Context, key string) error {
	d.mu.Lock()
	e, ok := d.entries[key]
	if !ok {
		d.mu.Unlock()
		return nil
	}

	if e.hasPending {
		if e.stop != nil {
			e.stop()
			e.stop = nil
		}
		updates := d.take(e)
		prev, done := d.begin(e)
		d.mu.Unlock()
		return d.run(ctx, key, updates, prev, done)
	}

	wait := e.inflight
	d.mu.Unlock()
	if wait == nil {
		return nil
	}
	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush sends every pending set now, synchronously, using ctx.
func (d *Dispatcher) Flush(ctx context.Context) {
	d.mu.Lock()
	keys := make([]string, 0, len(d.entries))
	for key, e := range d.entries {
		if e.hasPending || e.inflight != nil {
			keys = append(keys, key)
		}
	}
	d.mu.Unlock()

	for _, key := range keys {
		_ = d.Sync(ctx, key)
	}
}

// Close flushes pending work, waits for in-flight sends and rejects further
// submissions.
func (d *Dispatcher) Close(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.Flush(ctx)
	d.wg.Wait()
}

func (d *Dispatcher) fire(key string, gen uint64) {
	d.mu.Lock()
	e, ok := d.entries[key]
	if !ok || !e.hasPending || e.generation != gen {
		d.mu.Unlock()
		return
	}
	e.stop = nil
	updates := d.take(e)
	prev, done := d.begin(e)
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_ = d.run(ctx, key, updates, prev, done)
}

// take moves the pending set to lastSent. Caller holds d.mu.
func (d *Dispatcher) take(e *entry) []doctree.PositionUpdate {
	updates := e.pending
	e.pending = nil
	e.hasPending = false
	e.generation++
	e.lastSent = updates
	e.hasSent = true
	return updates
}

// begin registers a send for e behind the previous one. Caller holds d.mu.
func (d *Dispatcher) begin(e *entry) (prev, done chan struct{}) {
	prev = e.inflight
	done = make(chan struct{})
	e.inflight = done
	d.wg.Add(1)
	return prev, done
}

// run waits for the previous send of the key, then sends updates.
func (d *Dispatcher) run(ctx context.Context, key string, updates []doctree.PositionUpdate, prev, done chan struct{}) error {
	defer d.wg.Done()
	if prev != nil {
		<-prev
	}

	err := d.deliver(ctx, key, updates)

	d.mu.Lock()
	if e, ok := d.entries[key]; ok {
		// Let the same set through again if someone resubmits it
		if err != nil && e.hasSent && doctree.EqualUpdates(e.lastSent, updates) {
			e.lastSent = nil
			e.hasSent = false
		}
		if e.inflight == done {
			e.inflight = nil
		}
		e.touched = d.clock.Now()
		if e.idle() && !e.hasSent {
			delete(d.entries, key)
		}
	}
	close(done)
	d.mu.Unlock()

	return err
}

func (d *Dispatcher) deliver(ctx context.Context, key string, updates []doctree.PositionUpdate) error {
	start := time.Now()
	err := d.send(ctx, key, updates)
	if err == nil {
		d.logger.Info("reorder persisted",
			"key", key,
			"updates", len(updates),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	d.logger.Error("reorder persist failed",
		"key", key,
		"updates", len(updates),
		"error", err,
	)
	return err
}

// sweep drops idle keys untouched for idleTTL. Caller holds d.mu.
func (d *Dispatcher) sweep(now time.Time) {
	if now.Sub(d.lastSweep) < d.idleTTL {
		return
	}
	d.lastSweep = now
	for key, e := range d.entries {
		if e.idle() && now.Sub(e.touched) >= d.idleTTL {
			delete(d.entries, key)
		}
	}
}

func cloneUpdates(updates []doctree.PositionUpdate) []doctree.PositionUpdate {
	out := make([]doctree.PositionUpdate, len(updates))
	for i, u := range updates {
		out[i] = doctree.PositionUpdate{ID: u.ID, Index: u.Index}
		if u.ParentID != nil {
			p := *u.ParentID
			out[i].ParentID = &p
		}
	}
	return out
}
