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

package recovery

import (
	"time"

	"github.com/seanchatmangpt/citty-sub010/breaker"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/log"
)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger log.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithStream sets the event stream fault events are published on.
func WithStream(stream eventstream.Stream) Option {
	return func(h *Handler) { h.stream = stream }
}

// WithBank shares a circuit breaker bank with the handler. Without it the
// handler owns a private bank.
func WithBank(bank *breaker.Bank) Option {
	return func(h *Handler) {
		if bank != nil {
			h.bank = bank
		}
	}
}

// WithStatistics shares an error statistics instance with the handler.
func WithStatistics(stats *Statistics) Option {
	return func(h *Handler) {
		if stats != nil {
			h.stats = stats
		}
	}
}

// WithNotifier sets the alerting sink escalations are handed to.
func WithNotifier(notifier Notifier) Option {
	return func(h *Handler) { h.notifier = notifier }
}

// WithStrategy overrides the recovery policy for one category.
func WithStrategy(category Category, strategy Strategy) Option {
	return func(h *Handler) {
		strategy.Sanitize()
		h.strategies[category] = strategy
	}
}
