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
	"time"

	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"github.com/zeebo/xxh3"
)

// Bank maps target keys (actor ids, error categories) to breakers. Breakers
// are created lazily with the bank's config on first access and live for the
// lifetime of the bank; there is no automatic eviction.
type Bank struct {
	opts     *options
	breakers *csmap.CsMap[string, *Breaker]
	mu       sync.Mutex // serializes lazy creation
}

// NewBank creates a bank whose breakers all share the given config.
func NewBank(opts ...Option) *Bank {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}
	o.Sanitize()

	m := csmap.Create[string, *Breaker](
		csmap.WithShardCount[string, *Breaker](32),
		csmap.WithCustomHasher[string, *Breaker](func(key string) uint64 {
			return xxh3.Hash([]byte(key))
		}),
	)
	return &Bank{
		opts:     o,
		breakers: m,
	}
}

// Breaker returns the breaker guarding the given key, creating it on first
// access.
func (b *Bank) Breaker(key string) *Breaker {
	if br, ok := b.breakers.Load(key); ok {
		return br
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if br, ok := b.breakers.Load(key); ok {
		return br
	}
	br := newBreaker(key, b.opts)
	b.breakers.Store(key, br)
	return br
}

// IsOpen performs the admission check for the given key.
func (b *Bank) IsOpen(key string) bool {
	return b.Breaker(key).IsOpen()
}

// RecordSuccess reports a successful call against the given key.
func (b *Bank) RecordSuccess(key string) {
	b.Breaker(key).RecordSuccess()
}

// RecordFailure reports a failed call against the given key.
func (b *Bank) RecordFailure(key string) {
	b.Breaker(key).RecordFailure()
}

// State returns the state of the breaker guarding the given key.
func (b *Bank) State(key string) State {
	return b.Breaker(key).State()
}

// Remaining returns the time left until the given key's breaker permits a
// probe. Zero when the breaker is not open.
func (b *Bank) Remaining(key string) time.Duration {
	return b.Breaker(key).Remaining()
}

// Remove drops the breaker for the given key. The next access recreates a
// fresh closed breaker.
func (b *Bank) Remove(key string) {
	b.breakers.Delete(key)
}

// Len returns the number of breakers the bank holds.
func (b *Bank) Len() int {
	return b.breakers.Count()
}

// Range iterates over every breaker in the bank. Iteration stops when f
// returns true.
func (b *Bank) Range(f func(key string, br *Breaker) bool) {
	b.breakers.Range(f)
}

// Reset drops every breaker in the bank.
func (b *Bank) Reset() {
	b.breakers.Clear()
}
