// MIT License
//
// Copyright (c) 2025-2026 seanchatmangpt
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package breaker implements a count-threshold circuit breaker and a keyed
// bank of them. A breaker opens once it sees the configured number of failures
// inside the monitoring window, rejects calls for the recovery timeout, then
// lets a probe through; the probe's outcome closes or reopens it.
package breaker

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Breaker guards a single key. All state changes are serialized by the
// breaker's own mutex so a failure recorder and an admission check can never
// interleave into a lost update.
type Breaker struct {
	key  string
	opts *options

	mu          sync.Mutex
	state       atomic.Int32
	failures    []time.Time // stamps inside the monitoring window
	lastFailure time.Time
}

// New creates a breaker for the given key. Invalid options degrade to
// defaults rather than failing.
func New(key string, opts ...Option) *Breaker {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}
	o.Sanitize()
	return newBreaker(key, o)
}

func newBreaker(key string, o *options) *Breaker {
	b := &Breaker{
		key:  key,
		opts: o,
	}
	b.state.Store(int32(Closed))
	return b
}

// Key returns the target key the breaker guards.
func (b *Breaker) Key() string { return b.key }

// State returns the current breaker state.
func (b *Breaker) State() State { return State(b.state.Load()) }

// IsOpen is the admission check every caller performs before a guarded
// operation. Open with the recovery timeout still running returns true
// (blocked). Open with the timeout elapsed transitions to half-open and
// returns false, permitting a probe. Closed and half-open return false.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	if b.State() != Open {
		b.mu.Unlock()
		return false
	}
	if b.opts.clock().Sub(b.lastFailure) < b.opts.recoveryTimeout {
		b.mu.Unlock()
		return true
	}
	from, to := b.setStateLocked(HalfOpen)
	b.mu.Unlock()
	b.notify(from, to)
	return false
}

// RecordSuccess reports a successful call. It clears the failure window and
// closes the breaker, whatever state it was in.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.failures = b.failures[:0]
	from, to := b.setStateLocked(Closed)
	b.mu.Unlock()
	b.notify(from, to)
}

// RecordFailure reports a failed call. In half-open the probe failed and the
// breaker reopens immediately. Otherwise the failure joins the window and the
// breaker opens once the windowed count reaches the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	now := b.opts.clock()
	b.lastFailure = now

	if b.State() == HalfOpen {
		b.failures = append(b.failures[:0], now)
		from, to := b.setStateLocked(Open)
		b.mu.Unlock()
		b.notify(from, to)
		return
	}

	b.failures = append(b.failures, now)
	b.pruneLocked(now)
	if len(b.failures) >= b.opts.failureThreshold {
		from, to := b.setStateLocked(Open)
		b.mu.Unlock()
		b.notify(from, to)
		return
	}
	b.mu.Unlock()
}

// FailureCount returns the number of failures inside the monitoring window.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked(b.opts.clock())
	return len(b.failures)
}

// LastFailure returns the time of the most recent recorded failure. The zero
// time means no failure was ever recorded.
func (b *Breaker) LastFailure() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastFailure
}

// Remaining returns the time left until an open breaker permits a probe.
// It returns zero when the breaker is not open.
func (b *Breaker) Remaining() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.State() != Open {
		return 0
	}
	remaining := b.opts.recoveryTimeout - b.opts.clock().Sub(b.lastFailure)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// setStateLocked stores the target state and returns the transition edge.
// Caller must hold b.mu.
func (b *Breaker) setStateLocked(target State) (from, to State) {
	from = b.State()
	b.state.Store(int32(target))
	return from, target
}

// pruneLocked drops failure stamps older than the monitoring window.
// Caller must hold b.mu.
func (b *Breaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-b.opts.window)
	idx := 0
	for idx < len(b.failures) && !b.failures[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		b.failures = append(b.failures[:0], b.failures[idx:]...)
	}
}

// notify fires the state hook outside the lock.
func (b *Breaker) notify(from, to State) {
	if from != to && b.opts.stateHook != nil {
		b.opts.stateHook(b.key, from, to)
	}
}
