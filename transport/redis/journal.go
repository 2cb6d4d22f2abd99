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

// Package redis backs the delivery journal with a redis server.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	cerrors "github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/transport"
)

// DefaultNamespace prefixes every journal key so that several systems can
// share one redis database.
const DefaultNamespace = "citty"

// Journal persists in-flight delivery records in redis so a restarted
// process can pick them back up.
type Journal struct {
	client    redis.UniversalClient
	namespace string
}

// enforce compilation error
var _ transport.Journal = (*Journal)(nil)

// Option configures the journal.
type Option func(*Journal)

// WithNamespace overrides the key namespace.
func WithNamespace(namespace string) Option {
	return func(j *Journal) {
		if namespace != "" {
			j.namespace = namespace
		}
	}
}

// New creates a journal on top of the given redis client. The caller owns
// the client's lifecycle options; Close only releases the connection pool.
func New(client redis.UniversalClient, opts ...Option) *Journal {
	j := &Journal{
		client:    client,
		namespace: DefaultNamespace,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Dial creates a journal connected to the given redis address.
func Dial(addr string, opts ...Option) *Journal {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return New(client, opts...)
}

// Set stores the value under the key. A non-positive ttl stores it without
// expiry.
func (j *Journal) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return j.client.Set(ctx, j.key(key), value, ttl).Err()
}

// Get returns the stored value or ErrJournalMiss when the key is absent.
func (j *Journal) Get(ctx context.Context, key string) ([]byte, error) {
	bytea, err := j.client.Get(ctx, j.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cerrors.ErrJournalMiss
		}
		return nil, err
	}
	return bytea, nil
}

// Expire rewrites the TTL of an existing key. A non-positive ttl removes
// the expiry instead of deleting the key.
func (j *Journal) Expire(ctx context.Context, key string, ttl time.Duration) error {
	namespaced := j.key(key)
	if ttl > 0 {
		ok, err := j.client.Expire(ctx, namespaced, ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return cerrors.ErrJournalMiss
		}
		return nil
	}

	count, err := j.client.Exists(ctx, namespaced).Result()
	if err != nil {
		return err
	}
	if count == 0 {
		return cerrors.ErrJournalMiss
	}
	return j.client.Persist(ctx, namespaced).Err()
}

// Delete removes the key. Deleting an absent key is a no-op.
func (j *Journal) Delete(ctx context.Context, key string) error {
	return j.client.Del(ctx, j.key(key)).Err()
}

// Close releases the underlying connection pool.
func (j *Journal) Close() error {
	return j.client.Close()
}

func (j *Journal) key(key string) string {
	return j.namespace + ":" + key
}
