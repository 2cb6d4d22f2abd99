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
	"sync"
	"time"
)

// DefaultStatisticsWindow is the trailing window used for escalation-rate
// decisions when none is configured.
const DefaultStatisticsWindow = time.Minute

// Statistics keeps rolling error counters: all-time totals per category and
// per severity, plus a trailing window of timestamps per category used by the
// escalation check. All methods are safe for concurrent use.
type Statistics struct {
	mu         sync.Mutex
	window     time.Duration
	clock      func() time.Time
	total      uint64
	byCategory map[Category]uint64
	bySeverity map[Severity]uint64
	stamps     map[Category][]time.Time
}

// StatisticsOption configures a Statistics instance.
type StatisticsOption func(*Statistics)

// WithStatisticsWindow sets the trailing window.
func WithStatisticsWindow(window time.Duration) StatisticsOption {
	return func(s *Statistics) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithStatisticsClock sets the time source. Handy in tests.
func WithStatisticsClock(clock func() time.Time) StatisticsOption {
	return func(s *Statistics) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStatistics creates an empty Statistics.
func NewStatistics(opts ...StatisticsOption) *Statistics {
	s := &Statistics{
		window:     DefaultStatisticsWindow,
		clock:      time.Now,
		byCategory: make(map[Category]uint64),
		bySeverity: make(map[Severity]uint64),
		stamps:     make(map[Category][]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record counts one error occurrence.
func (s *Statistics) Record(category Category, severity Severity) {
	now := s.clock()
	s.mu.Lock()
	s.total++
	s.byCategory[category]++
	s.bySeverity[severity]++
	s.stamps[category] = append(s.pruneLocked(category, now), now)
	s.mu.Unlock()
}

// Total returns the all-time error count.
func (s *Statistics) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// CategoryCount returns the all-time count for a category.
func (s *Statistics) CategoryCount(category Category) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byCategory[category]
}

// SeverityCount returns the all-time count for a severity.
func (s *Statistics) SeverityCount(severity Severity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bySeverity[severity]
}

// WindowedCount returns how many errors of the category landed inside the
// trailing window.
func (s *Statistics) WindowedCount(category Category) int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamps[category] = s.pruneLocked(category, now)
	return len(s.stamps[category])
}

// Counts returns copies of the per-category and per-severity tallies.
func (s *Statistics) Counts() (map[Category]uint64, map[Severity]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := make(map[Category]uint64, len(s.byCategory))
	for category, count := range s.byCategory {
		categories[category] = count
	}
	severities := make(map[Severity]uint64, len(s.bySeverity))
	for severity, count := range s.bySeverity {
		severities[severity] = count
	}
	return categories, severities
}

// Reset clears every counter and window.
func (s *Statistics) Reset() {
	s.mu.Lock()
	s.total = 0
	s.byCategory = make(map[Category]uint64)
	s.bySeverity = make(map[Severity]uint64)
	s.stamps = make(map[Category][]time.Time)
	s.mu.Unlock()
}

func (s *Statistics) pruneLocked(category Category, now time.Time) []time.Time {
	cutoff := now.Add(-s.window)
	stamps := s.stamps[category]
	kept := stamps[:0]
	for _, stamp := range stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	return kept
}
