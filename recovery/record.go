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
	"context"
	"sync"
	"time"
)

// Context carries the provenance of an error: which component and operation
// raised it and, when relevant, the actor and message involved.
type Context struct {
	Component string
	Operation string
	ActorID   string
	MessageID string
}

// Record is a point-in-time view of a tracked error. The handler owns the
// live state; callers always receive copies.
type Record struct {
	ID               string
	Category         Category
	Severity         Severity
	Message          string
	Context          Context
	RecoveryAttempts int
	Resolved         bool
	Escalated        bool
	Timestamp        time.Time
}

// Action is a pluggable fallback behavior invoked on each recovery attempt.
// Actions are bound to strategy tags through Handler.RegisterAction; a nil
// return marks the record resolved.
type Action func(ctx context.Context, record Record) error

// Notifier is the alerting sink escalated records are handed to.
type Notifier interface {
	Notify(ctx context.Context, record Record) error
}

// entry is the live, handler-owned state behind a Record.
type entry struct {
	mu       sync.Mutex
	record   Record
	strategy Strategy
	done     chan struct{}
	finished bool
}

func newEntry(record Record, strategy Strategy) *entry {
	return &entry{
		record:   record,
		strategy: strategy,
		done:     make(chan struct{}),
	}
}

// snapshot returns a copy of the record under the entry lock.
func (e *entry) snapshot() Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record
}

// finishLocked closes the done channel once. Callers hold e.mu.
func (e *entry) finishLocked() {
	if !e.finished {
		e.finished = true
		close(e.done)
	}
}
