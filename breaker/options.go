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

import "time"

// options configures a breaker.
type options struct {
	failureThreshold int              // failures within the window that open the breaker
	recoveryTimeout  time.Duration    // how long to reject calls after the last failure
	window           time.Duration    // rolling window failures are counted within
	clock            func() time.Time // injectable for tests
	stateHook        func(key string, from, to State)
}

func defaultOptions() *options {
	return &options{
		failureThreshold: 5,
		recoveryTimeout:  30 * time.Second,
		window:           60 * time.Second,
		clock:            time.Now,
	}
}

// Sanitize adjusts invalid options to their default values.
func (o *options) Sanitize() {
	if o.failureThreshold < 1 {
		o.failureThreshold = 1
	}
	if o.recoveryTimeout <= 0 {
		o.recoveryTimeout = 30 * time.Second
	}
	if o.window <= 0 {
		o.window = 60 * time.Second
	}
	if o.clock == nil {
		o.clock = time.Now
	}
}

// Option configures a breaker or a bank.
type Option func(*options)

// WithFailureThreshold sets the number of failures within the monitoring
// window that trips the breaker open.
func WithFailureThreshold(n int) Option { return func(o *options) { o.failureThreshold = n } }

// WithRecoveryTimeout sets how long the breaker rejects calls after its last
// recorded failure before permitting a half-open probe.
func WithRecoveryTimeout(d time.Duration) Option { return func(o *options) { o.recoveryTimeout = d } }

// WithWindow sets the rolling window failures are counted within. Failures
// older than the window no longer count toward the threshold.
func WithWindow(d time.Duration) Option { return func(o *options) { o.window = d } }

// WithClock overrides the time source. Intended for tests that drive the
// breaker with a simulated clock.
func WithClock(clock func() time.Time) Option { return func(o *options) { o.clock = clock } }

// WithStateChangeHook registers a callback invoked after every state
// transition. The hook runs outside the breaker's lock.
func WithStateChangeHook(hook func(key string, from, to State)) Option {
	return func(o *options) { o.stateHook = hook }
}
