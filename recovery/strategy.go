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

import "time"

// Strategy is the per-category recovery policy. It is immutable once the
// handler is built: overrides go through WithStrategy at construction time.
type Strategy struct {
	// MaxRetries caps how many recovery attempts a record gets.
	MaxRetries int
	// BaseBackoff is the wait before the first attempt; attempt n waits
	// BaseBackoff multiplied by n.
	BaseBackoff time.Duration
	// EscalationThreshold bounds both the per-record attempt count and the
	// windowed same-category error count before escalation.
	EscalationThreshold int
	// Timeout bounds a single fallback action invocation.
	Timeout time.Duration
	// FallbackAction names the pluggable action invoked on each attempt.
	FallbackAction string
}

// Sanitize replaces zero or nonsensical fields with the generic defaults.
func (s *Strategy) Sanitize() {
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.BaseBackoff <= 0 {
		s.BaseBackoff = time.Second
	}
	if s.EscalationThreshold <= 0 {
		s.EscalationThreshold = 5
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.FallbackAction == "" {
		s.FallbackAction = "retry_with_backoff"
	}
}

// DefaultStrategy is the policy applied to categories absent from the table.
func DefaultStrategy() Strategy {
	return Strategy{
		MaxRetries:          3,
		BaseBackoff:         time.Second,
		EscalationThreshold: 5,
		Timeout:             30 * time.Second,
		FallbackAction:      "retry_with_backoff",
	}
}

// DefaultStrategies returns the built-in policy table. Every known category
// carries a bounded retry budget and a fallback action tag; the tags bind to
// nothing until an Action is registered for them.
func DefaultStrategies() map[Category]Strategy {
	return map[Category]Strategy{
		CategoryNetwork: {
			MaxRetries:          3,
			BaseBackoff:         time.Second,
			EscalationThreshold: 2,
			Timeout:             30 * time.Second,
			FallbackAction:      "use_cache",
		},
		CategoryValidation: {
			MaxRetries:          1,
			BaseBackoff:         500 * time.Millisecond,
			EscalationThreshold: 10,
			Timeout:             5 * time.Second,
			FallbackAction:      "reject_input",
		},
		CategoryProcessing: {
			MaxRetries:          3,
			BaseBackoff:         2 * time.Second,
			EscalationThreshold: 5,
			Timeout:             time.Minute,
			FallbackAction:      "retry_with_backoff",
		},
		CategoryStorage: {
			MaxRetries:          5,
			BaseBackoff:         time.Second,
			EscalationThreshold: 3,
			Timeout:             30 * time.Second,
			FallbackAction:      "use_replica",
		},
		CategorySemantic: {
			MaxRetries:          2,
			BaseBackoff:         time.Second,
			EscalationThreshold: 5,
			Timeout:             30 * time.Second,
			FallbackAction:      "use_fallback_model",
		},
		CategoryActor: {
			MaxRetries:          3,
			BaseBackoff:         time.Second,
			EscalationThreshold: 3,
			Timeout:             30 * time.Second,
			FallbackAction:      "restart_actor",
		},
		CategoryMemory: {
			MaxRetries:          2,
			BaseBackoff:         5 * time.Second,
			EscalationThreshold: 2,
			Timeout:             time.Minute,
			FallbackAction:      "shed_load",
		},
		CategoryTimeout: {
			MaxRetries:          2,
			BaseBackoff:         2 * time.Second,
			EscalationThreshold: 4,
			Timeout:             time.Minute,
			FallbackAction:      "extend_deadline",
		},
		CategoryResource: {
			MaxRetries:          2,
			BaseBackoff:         5 * time.Second,
			EscalationThreshold: 3,
			Timeout:             time.Minute,
			FallbackAction:      "shed_load",
		},
		CategoryAuction: {
			MaxRetries:          3,
			BaseBackoff:         time.Second,
			EscalationThreshold: 3,
			Timeout:             30 * time.Second,
			FallbackAction:      "extend_auction",
		},
		CategoryRecommendation: {
			MaxRetries:          2,
			BaseBackoff:         time.Second,
			EscalationThreshold: 5,
			Timeout:             30 * time.Second,
			FallbackAction:      "use_popular_items",
		},
	}
}
