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

// Package transport defines the collaborator surfaces the runtime hands
// non-local work to: a Transport for fan-out delivery and job execution, and
// a Journal for short-TTL durability of in-flight messages. The runtime
// never implements these itself; adapters live in subpackages and in-memory
// stand-ins back the tests.
package transport

import (
	"context"
	"time"
)

// EnqueueOptions tune a job handed to the external executor. Zero values
// leave the executor's own defaults in charge.
type EnqueueOptions struct {
	// Delay postpones the first execution.
	Delay time.Duration
	// MaxRetries caps executor-side retries.
	MaxRetries int
	// Backoff is the executor-side delay between retries.
	Backoff time.Duration
}

// Transport moves payloads out of the local runtime: Publish fans out to a
// topic, Enqueue hands a named job to an out-of-process executor.
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Enqueue(ctx context.Context, jobName string, payload []byte, opts EnqueueOptions) error
	Close() error
}

// Journal stores in-flight message envelopes under short TTLs.
type Journal interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
