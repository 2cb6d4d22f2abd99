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

package transport

import (
	"context"
	"sync"
	"time"

	"github.com/seanchatmangpt/citty-sub010/errors"
)

// PublishedMessage is one Publish captured by the memory transport.
type PublishedMessage struct {
	Topic   string
	Payload []byte
}

// EnqueuedJob is one Enqueue captured by the memory transport.
type EnqueuedJob struct {
	Job     string
	Payload []byte
	Options EnqueueOptions
}

// MemoryTransport records everything handed to it. It backs tests and
// single-process deployments with no external executor.
type MemoryTransport struct {
	mu        sync.Mutex
	published []PublishedMessage
	enqueued  []EnqueuedJob
	closed    bool
}

// enforce compilation error
var _ Transport = (*MemoryTransport)(nil)

// NewMemoryTransport creates an empty memory transport.
func NewMemoryTransport() *MemoryTransport {
	return new(MemoryTransport)
}

// Publish records the payload under the topic.
func (t *MemoryTransport) Publish(_ context.Context, topic string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.ErrTransportNotConnected
	}
	t.published = append(t.published, PublishedMessage{Topic: topic, Payload: payload})
	return nil
}

// Enqueue records the job.
func (t *MemoryTransport) Enqueue(_ context.Context, jobName string, payload []byte, opts EnqueueOptions) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.ErrTransportNotConnected
	}
	t.enqueued = append(t.enqueued, EnqueuedJob{Job: jobName, Payload: payload, Options: opts})
	return nil
}

// Close marks the transport unusable.
func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

// Published returns a copy of every captured publish.
func (t *MemoryTransport) Published() []PublishedMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PublishedMessage, len(t.published))
	copy(out, t.published)
	return out
}

// Enqueued returns a copy of every captured job.
func (t *MemoryTransport) Enqueued() []EnqueuedJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]EnqueuedJob, len(t.enqueued))
	copy(out, t.enqueued)
	return out
}

// journalItem is one stored value with its expiry.
type journalItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryJournal is a TTL map standing in for the durable journal.
type MemoryJournal struct {
	mu    sync.Mutex
	clock func() time.Time
	items map[string]journalItem
}

// enforce compilation error
var _ Journal = (*MemoryJournal)(nil)

// MemoryJournalOption configures a MemoryJournal.
type MemoryJournalOption func(*MemoryJournal)

// WithJournalClock sets the time source used for expiry. Intended for tests.
func WithJournalClock(clock func() time.Time) MemoryJournalOption {
	return func(j *MemoryJournal) {
		if clock != nil {
			j.clock = clock
		}
	}
}

// NewMemoryJournal creates an empty memory journal.
func NewMemoryJournal(opts ...MemoryJournalOption) *MemoryJournal {
	j := &MemoryJournal{
		clock: time.Now,
		items: make(map[string]journalItem),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Set stores the value. A non-positive ttl stores it without expiry.
func (j *MemoryJournal) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := journalItem{value: value}
	if ttl > 0 {
		item.expiresAt = j.clock().Add(ttl)
	}
	j.mu.Lock()
	j.items[key] = item
	j.mu.Unlock()
	return nil
}

// Get returns the stored value or ErrJournalMiss when absent or expired.
func (j *MemoryJournal) Get(_ context.Context, key string) ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	item, ok := j.items[key]
	if !ok {
		return nil, errors.ErrJournalMiss
	}
	if !item.expiresAt.IsZero() && !j.clock().Before(item.expiresAt) {
		delete(j.items, key)
		return nil, errors.ErrJournalMiss
	}
	return item.value, nil
}

// Expire rewrites the TTL of an existing key.
func (j *MemoryJournal) Expire(_ context.Context, key string, ttl time.Duration) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	item, ok := j.items[key]
	if !ok {
		return errors.ErrJournalMiss
	}
	if ttl > 0 {
		item.expiresAt = j.clock().Add(ttl)
	} else {
		item.expiresAt = time.Time{}
	}
	j.items[key] = item
	return nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (j *MemoryJournal) Delete(_ context.Context, key string) error {
	j.mu.Lock()
	delete(j.items, key)
	j.mu.Unlock()
	return nil
}

// Close drops every stored item.
func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	j.items = make(map[string]journalItem)
	j.mu.Unlock()
	return nil
}

// Len returns how many live items the journal holds.
func (j *MemoryJournal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.items)
}
