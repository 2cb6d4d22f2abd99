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

// Package nats delivers actor traffic and queued jobs over a NATS server.
package nats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/transport"
)

// jobsSubjectPrefix prefixes the subject every queued job is published to.
const jobsSubjectPrefix = "jobs."

// jobEnvelope is the wire form of a queued job.
type jobEnvelope struct {
	Job           string          `json:"job"`
	Payload       json.RawMessage `json:"payload"`
	EnqueuedAt    time.Time       `json:"enqueuedAt"`
	DelayMillis   int64           `json:"delayMillis,omitempty"`
	BackoffMillis int64           `json:"backoffMillis,omitempty"`
	MaxRetries    int             `json:"maxRetries,omitempty"`
}

// Transport publishes actor messages and job envelopes to a NATS server.
// It stays disconnected until Connect is called so that callers control
// when the network dependency comes up.
type Transport struct {
	serverURL     string
	clientName    string
	reconnectWait time.Duration

	connected *atomic.Bool
	conn      *nats.Conn
	logger    log.Logger
}

// enforce compilation error
var _ transport.Transport = (*Transport)(nil)

// Option configures the NATS transport.
type Option func(*Transport)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithClientName sets the client name reported to the server.
func WithClientName(name string) Option {
	return func(t *Transport) {
		t.clientName = name
	}
}

// WithReconnectWait sets the delay between reconnect attempts.
func WithReconnectWait(wait time.Duration) Option {
	return func(t *Transport) {
		if wait > 0 {
			t.reconnectWait = wait
		}
	}
}

// New creates a transport pointing at the given server URL. The returned
// transport is not connected; call Connect before publishing.
func New(serverURL string, opts ...Option) *Transport {
	t := &Transport{
		serverURL:     serverURL,
		clientName:    "citty-transport",
		reconnectWait: 2 * time.Second,
		connected:     atomic.NewBool(false),
		logger:        log.DiscardLogger,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Connect dials the server. The connection reconnects indefinitely once
// established, so Connect only fails when the server never comes up.
func (t *Transport) Connect(ctx context.Context) error {
	if t.connected.Load() {
		return nil
	}

	opts := nats.GetDefaultOptions()
	opts.Url = t.serverURL
	opts.Name = t.clientName
	opts.ReconnectWait = t.reconnectWait
	opts.MaxReconnect = -1

	var (
		connection *nats.Conn
		err        error
	)

	// attempt the initial dial a handful of times so a server that is
	// still booting does not fail the whole runtime start
	const maxRetries = 5
	retrier := retry.NewRetrier(maxRetries, 100*time.Millisecond, opts.ReconnectWait)
	err = retrier.RunContext(ctx, func(_ context.Context) error {
		connection, err = opts.Connect()
		if err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return err
	}

	t.conn = connection
	t.connected.Store(true)
	t.logger.Infof("connected to nats server=(%s)", t.serverURL)
	return nil
}

// Publish sends the payload to the given subject.
func (t *Transport) Publish(_ context.Context, topic string, payload []byte) error {
	if !t.connected.Load() {
		return errors.ErrTransportNotConnected
	}
	return t.conn.Publish(topic, payload)
}

// Enqueue wraps the payload in a job envelope and publishes it to the
// job subject. The payload must be valid JSON because downstream workers
// decode the envelope as a whole.
func (t *Transport) Enqueue(_ context.Context, jobName string, payload []byte, opts transport.EnqueueOptions) error {
	if !t.connected.Load() {
		return errors.ErrTransportNotConnected
	}

	if len(payload) == 0 {
		payload = []byte("null")
	}

	if !json.Valid(payload) {
		return errors.ErrInvalidMessage
	}

	envelope := jobEnvelope{
		Job:           jobName,
		Payload:       payload,
		EnqueuedAt:    time.Now().UTC(),
		DelayMillis:   opts.Delay.Milliseconds(),
		BackoffMillis: opts.Backoff.Milliseconds(),
		MaxRetries:    opts.MaxRetries,
	}

	bytea, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return t.conn.Publish(jobsSubjectPrefix+jobName, bytea)
}

// Close drains the connection so in-flight publishes land before the
// socket goes away.
func (t *Transport) Close() error {
	if !t.connected.CompareAndSwap(true, false) {
		return nil
	}

	if t.conn != nil {
		if err := t.conn.Drain(); err != nil {
			t.logger.Warnf("failed to drain nats connection: %v", err)
			t.conn.Close()
		}
		t.conn = nil
	}

	return nil
}
