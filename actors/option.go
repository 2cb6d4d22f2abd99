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

package actors

import (
	"time"

	"github.com/seanchatmangpt/citty-sub010/breaker"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/recovery"
	"github.com/seanchatmangpt/citty-sub010/sidecar"
	"github.com/seanchatmangpt/citty-sub010/supervision"
	"github.com/seanchatmangpt/citty-sub010/telemetry"
	"github.com/seanchatmangpt/citty-sub010/transport"
)

// Option configures a System before its components are built.
type Option func(*System)

// WithLogger sets the system logger. Every component inherits it.
func WithLogger(logger log.Logger) Option {
	return func(s *System) { s.logger = logger }
}

// WithClock overrides the system time source. Intended for tests that drive
// retries, heartbeats and breakers with a simulated clock.
func WithClock(clock func() time.Time) Option {
	return func(s *System) { s.clock = clock }
}

// WithTelemetry sets the telemetry engine the runtime instruments itself
// with. Defaults to the global providers.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(s *System) { s.telemetry = tel }
}

// WithTransport installs the transport for actors not resident in this
// runtime. Without one, sends to unknown actors fail with ErrActorNotFound.
func WithTransport(t transport.Transport) Option {
	return func(s *System) { s.transport = t }
}

// WithJournal installs the delivery journal in-flight envelopes are
// persisted to.
func WithJournal(j transport.Journal) Option {
	return func(s *System) { s.journal = j }
}

// WithNotifier sets the alerting sink escalated error records are handed to.
func WithNotifier(n recovery.Notifier) Option {
	return func(s *System) { s.notifier = n }
}

// WithBridge attaches the sidecar bridge to an external worker process.
func WithBridge(b *sidecar.Bridge) Option {
	return func(s *System) { s.bridge = b }
}

// WithShutdownGrace bounds how long Stop waits for in-flight messages to
// drain before dropping them.
func WithShutdownGrace(grace time.Duration) Option {
	return func(s *System) {
		if grace > 0 {
			s.shutdownGrace = grace
		}
	}
}

// WithHeartbeatInterval sets the health probe cadence.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(s *System) {
		if interval > 0 {
			s.heartbeatInterval = interval
		}
	}
}

// WithAckTimeout sets how long a delivery may stay unacknowledged before the
// retry sweep acts on it.
func WithAckTimeout(timeout time.Duration) Option {
	return func(s *System) {
		if timeout > 0 {
			s.ackTimeout = timeout
		}
	}
}

// WithRetryBackoff sets the base delay before the first redelivery.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(s *System) {
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

// WithMaxRetries sets the default retry allowance for messages that do not
// carry their own.
func WithMaxRetries(maxRetries int) Option {
	return func(s *System) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
	}
}

// WithSweepInterval sets how often the router's retry sweep runs.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *System) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithJournalTTL bounds how long an in-flight envelope stays in the journal.
func WithJournalTTL(ttl time.Duration) Option {
	return func(s *System) {
		if ttl > 0 {
			s.journalTTL = ttl
		}
	}
}

// WithBreakerOptions appends options to the circuit breaker bank, on top of
// the system's clock and state change wiring.
func WithBreakerOptions(opts ...breaker.Option) Option {
	return func(s *System) { s.breakerOpts = append(s.breakerOpts, opts...) }
}

// WithRecoveryOptions appends options to the error recovery handler, on top
// of the system's logger, clock, stream, bank and statistics wiring.
func WithRecoveryOptions(opts ...recovery.Option) Option {
	return func(s *System) { s.recoveryOpts = append(s.recoveryOpts, opts...) }
}

// WithRootSupervision replaces the policy of the supervision root.
func WithRootSupervision(cfg supervision.Config) Option {
	return func(s *System) { s.rootConfig = &cfg }
}
