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

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/transport"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host: "127.0.0.1",
		Port: -1,
	})

	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}

	return serv
}

func TestTransport(t *testing.T) {
	t.Run("With Publish", func(t *testing.T) {
		ctx := context.TODO()
		srv := startNatsServer(t)
		t.Cleanup(srv.Shutdown)

		serverURL := fmt.Sprintf("nats://%s", srv.Addr().String())
		tsp := New(serverURL, WithLogger(log.DiscardLogger))
		require.NoError(t, tsp.Connect(ctx))

		// raw subscriber watching the actor subject
		conn, err := natsgo.Connect(serverURL)
		require.NoError(t, err)
		t.Cleanup(conn.Close)

		received := make(chan []byte, 1)
		sub, err := conn.Subscribe("actors.scoring-1", func(msg *natsgo.Msg) {
			received <- msg.Data
		})
		require.NoError(t, err)
		require.NoError(t, conn.Flush())

		err = tsp.Publish(ctx, "actors.scoring-1", []byte(`{"type":"SCORE"}`))
		require.NoError(t, err)

		select {
		case data := <-received:
			assert.JSONEq(t, `{"type":"SCORE"}`, string(data))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the published message")
		}

		require.NoError(t, sub.Unsubscribe())
		assert.NoError(t, tsp.Close())
	})
	t.Run("With Enqueue", func(t *testing.T) {
		ctx := context.TODO()
		srv := startNatsServer(t)
		t.Cleanup(srv.Shutdown)

		serverURL := fmt.Sprintf("nats://%s", srv.Addr().String())
		tsp := New(serverURL, WithLogger(log.DiscardLogger), WithClientName("enqueue-test"))
		require.NoError(t, tsp.Connect(ctx))

		conn, err := natsgo.Connect(serverURL)
		require.NoError(t, err)
		t.Cleanup(conn.Close)

		received := make(chan []byte, 1)
		_, err = conn.Subscribe("jobs.bid-evaluation", func(msg *natsgo.Msg) {
			received <- msg.Data
		})
		require.NoError(t, err)
		require.NoError(t, conn.Flush())

		opts := transport.EnqueueOptions{
			Delay:      1500 * time.Millisecond,
			MaxRetries: 3,
			Backoff:    2 * time.Second,
		}
		err = tsp.Enqueue(ctx, "bid-evaluation", []byte(`{"auctionId":"a-1"}`), opts)
		require.NoError(t, err)

		select {
		case data := <-received:
			var envelope jobEnvelope
			require.NoError(t, json.Unmarshal(data, &envelope))
			assert.Equal(t, "bid-evaluation", envelope.Job)
			assert.JSONEq(t, `{"auctionId":"a-1"}`, string(envelope.Payload))
			assert.EqualValues(t, 1500, envelope.DelayMillis)
			assert.EqualValues(t, 2000, envelope.BackoffMillis)
			assert.Equal(t, 3, envelope.MaxRetries)
			assert.False(t, envelope.EnqueuedAt.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the job envelope")
		}

		assert.NoError(t, tsp.Close())
	})
	t.Run("With Enqueue empty payload", func(t *testing.T) {
		ctx := context.TODO()
		srv := startNatsServer(t)
		t.Cleanup(srv.Shutdown)

		serverURL := fmt.Sprintf("nats://%s", srv.Addr().String())
		tsp := New(serverURL, WithLogger(log.DiscardLogger))
		require.NoError(t, tsp.Connect(ctx))

		conn, err := natsgo.Connect(serverURL)
		require.NoError(t, err)
		t.Cleanup(conn.Close)

		received := make(chan []byte, 1)
		_, err = conn.Subscribe("jobs.cleanup", func(msg *natsgo.Msg) {
			received <- msg.Data
		})
		require.NoError(t, err)
		require.NoError(t, conn.Flush())

		err = tsp.Enqueue(ctx, "cleanup", nil, transport.EnqueueOptions{})
		require.NoError(t, err)

		select {
		case data := <-received:
			var envelope jobEnvelope
			require.NoError(t, json.Unmarshal(data, &envelope))
			assert.Equal(t, "cleanup", envelope.Job)
			assert.Equal(t, "null", string(envelope.Payload))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the job envelope")
		}

		assert.NoError(t, tsp.Close())
	})
	t.Run("With Enqueue invalid payload", func(t *testing.T) {
		ctx := context.TODO()
		srv := startNatsServer(t)
		t.Cleanup(srv.Shutdown)

		serverURL := fmt.Sprintf("nats://%s", srv.Addr().String())
		tsp := New(serverURL, WithLogger(log.DiscardLogger))
		require.NoError(t, tsp.Connect(ctx))

		err := tsp.Enqueue(ctx, "bid-evaluation", []byte(`{broken`), transport.EnqueueOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidMessage)

		assert.NoError(t, tsp.Close())
	})
	t.Run("With not connected", func(t *testing.T) {
		ctx := context.TODO()
		tsp := New("nats://127.0.0.1:4222", WithLogger(log.DiscardLogger))

		err := tsp.Publish(ctx, "actors.scoring-1", []byte(`{}`))
		assert.ErrorIs(t, err, errors.ErrTransportNotConnected)

		err = tsp.Enqueue(ctx, "bid-evaluation", []byte(`{}`), transport.EnqueueOptions{})
		assert.ErrorIs(t, err, errors.ErrTransportNotConnected)

		// closing an unconnected transport is a no-op
		assert.NoError(t, tsp.Close())
	})
	t.Run("With Connect idempotency", func(t *testing.T) {
		ctx := context.TODO()
		srv := startNatsServer(t)
		t.Cleanup(srv.Shutdown)

		serverURL := fmt.Sprintf("nats://%s", srv.Addr().String())
		tsp := New(serverURL, WithLogger(log.DiscardLogger))
		require.NoError(t, tsp.Connect(ctx))
		require.NoError(t, tsp.Connect(ctx))

		assert.NoError(t, tsp.Close())
		assert.NoError(t, tsp.Close())
	})
	t.Run("With Connect failure", func(t *testing.T) {
		ctx := context.TODO()
		// grab a free port nothing listens on
		ports := dynaport.Get(1)
		serverURL := fmt.Sprintf("nats://127.0.0.1:%d", ports[0])

		tsp := New(serverURL, WithLogger(log.DiscardLogger), WithReconnectWait(200*time.Millisecond))
		err := tsp.Connect(ctx)
		require.Error(t, err)
	})
}
