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

// Package sidecar bridges the runtime to an externally managed worker
// process over its standard streams. The bridge never starts, stops or
// supervises the process; it only frames commands onto the input stream
// once the process has announced readiness on its output stream.
package sidecar

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"go.uber.org/atomic"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/log"
)

// DefaultReadySentinel is the output line fragment that marks the worker
// process as ready to receive commands.
const DefaultReadySentinel = "runtime ready"

// Command is one instruction framed as a newline-delimited JSON document
// on the worker's input stream.
type Command struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

// Bridge frames commands to a worker process and watches its output for
// the readiness handshake.
type Bridge struct {
	sentinel string
	logger   log.Logger

	mu      sync.Mutex
	encoder *json.Encoder

	reader   io.Reader
	ready    *atomic.Bool
	scanOnce sync.Once
	scanned  chan struct{}
	scanErr  error
}

// Option configures the bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithReadySentinel overrides the output fragment that signals readiness.
func WithReadySentinel(sentinel string) Option {
	return func(b *Bridge) {
		if sentinel != "" {
			b.sentinel = sentinel
		}
	}
}

// New creates a bridge over the worker's input and output streams. The
// caller keeps ownership of both streams and of the process behind them.
func New(input io.Writer, output io.Reader, opts ...Option) *Bridge {
	b := &Bridge{
		sentinel: DefaultReadySentinel,
		logger:   log.DiscardLogger,
		encoder:  json.NewEncoder(input),
		reader:   output,
		ready:    atomic.NewBool(false),
		scanned:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// WaitReady blocks until the worker prints the readiness sentinel, the
// output stream ends, or the context expires. It is safe to call from
// several goroutines; the first call starts the scan.
func (b *Bridge) WaitReady(ctx context.Context) error {
	if b.ready.Load() {
		return nil
	}

	b.scanOnce.Do(func() {
		go b.scan()
	})

	select {
	case <-b.scanned:
		if b.ready.Load() {
			return nil
		}
		return b.scanErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the readiness handshake has completed.
func (b *Bridge) Ready() bool {
	return b.ready.Load()
}

// Issue writes the command to the worker's input stream as one JSON line.
// Commands issued before the handshake completes are rejected.
func (b *Bridge) Issue(command Command) error {
	if !b.ready.Load() {
		return errors.ErrRuntimeNotReady
	}

	if command.Command == "" {
		return errors.ErrInvalidCommand
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encoder.Encode(command)
}

// scan consumes the worker's output line by line until the sentinel shows
// up or the stream ends.
func (b *Bridge) scan() {
	scanner := bufio.NewScanner(b.reader)
	for scanner.Scan() {
		line := scanner.Text()
		b.logger.Debugf("worker output: %s", line)
		if strings.Contains(line, b.sentinel) {
			b.ready.Store(true)
			close(b.scanned)
			return
		}
	}

	if err := scanner.Err(); err != nil {
		b.scanErr = err
	} else {
		// the stream ended without the handshake
		b.scanErr = errors.ErrRuntimeNotReady
	}
	close(b.scanned)
}
