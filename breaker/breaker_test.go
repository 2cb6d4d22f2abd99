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

package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestBreakerCycle(t *testing.T) {
	clock := newFakeClock()
	b := New("bidder-1",
		WithFailureThreshold(3),
		WithRecoveryTimeout(10*time.Second),
		WithWindow(time.Minute),
		WithClock(clock.Now))

	require.Equal(t, Closed, b.State())
	require.False(t, b.IsOpen())

	// exactly threshold failures open the breaker
	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, Closed, b.State())
	require.False(t, b.IsOpen())
	b.RecordFailure()
	require.Equal(t, Open, b.State())
	require.True(t, b.IsOpen())

	// still blocked before the recovery timeout
	clock.Advance(9 * time.Second)
	require.True(t, b.IsOpen())

	// recovery timeout elapsed: half-open, one probe permitted
	clock.Advance(time.Second)
	require.False(t, b.IsOpen())
	require.Equal(t, HalfOpen, b.State())

	// successful probe closes the breaker
	b.RecordSuccess()
	require.Equal(t, Closed, b.State())
	require.False(t, b.IsOpen())
	require.Zero(t, b.FailureCount())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	clock := newFakeClock()
	b := New("bidder-1",
		WithFailureThreshold(2),
		WithRecoveryTimeout(5*time.Second),
		WithClock(clock.Now))

	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, Open, b.State())

	clock.Advance(5 * time.Second)
	require.False(t, b.IsOpen())
	require.Equal(t, HalfOpen, b.State())

	// a single failure in half-open reopens immediately
	b.RecordFailure()
	require.Equal(t, Open, b.State())
	require.True(t, b.IsOpen())

	// and the recovery timeout restarts from that failure
	clock.Advance(4 * time.Second)
	require.True(t, b.IsOpen())
	clock.Advance(time.Second)
	require.False(t, b.IsOpen())
}

func TestBreakerWindowPruning(t *testing.T) {
	clock := newFakeClock()
	b := New("bidder-1",
		WithFailureThreshold(3),
		WithWindow(10*time.Second),
		WithClock(clock.Now))

	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, 2, b.FailureCount())

	// old failures age out of the monitoring window
	clock.Advance(11 * time.Second)
	require.Zero(t, b.FailureCount())

	// so the next failure does not open the breaker
	b.RecordFailure()
	require.Equal(t, Closed, b.State())
	require.Equal(t, 1, b.FailureCount())
}

func TestBreakerRemaining(t *testing.T) {
	clock := newFakeClock()
	b := New("bidder-1",
		WithFailureThreshold(1),
		WithRecoveryTimeout(30*time.Second),
		WithClock(clock.Now))

	require.Zero(t, b.Remaining())

	b.RecordFailure()
	require.Equal(t, Open, b.State())
	require.Equal(t, 30*time.Second, b.Remaining())

	clock.Advance(12 * time.Second)
	require.Equal(t, 18*time.Second, b.Remaining())

	clock.Advance(20 * time.Second)
	require.Zero(t, b.Remaining())
}

func TestBreakerStateHook(t *testing.T) {
	clock := newFakeClock()
	var transitions []string
	b := New("bidder-1",
		WithFailureThreshold(1),
		WithRecoveryTimeout(time.Second),
		WithClock(clock.Now),
		WithStateChangeHook(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}))

	b.RecordFailure()
	clock.Advance(time.Second)
	require.False(t, b.IsOpen())
	b.RecordSuccess()

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerSanitizedOptions(t *testing.T) {
	b := New("bidder-1", WithFailureThreshold(-1), WithRecoveryTimeout(-time.Second), WithWindow(0))
	// degraded to sane defaults: a single failure still opens
	b.RecordFailure()
	require.Equal(t, Open, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
