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

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/seanchatmangpt/citty-sub010/errors"
)

// journalFromEnv skips the test unless REDIS_ADDR points at a live server.
func journalFromEnv(t *testing.T) *Journal {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	journal := Dial(addr, WithNamespace("citty-test-"+uuid.NewString()))
	t.Cleanup(func() {
		assert.NoError(t, journal.Close())
	})
	return journal
}

func TestJournalKeyNamespace(t *testing.T) {
	journal := New(nil)
	assert.Equal(t, "citty:inflight:m-1", journal.key("inflight:m-1"))

	journal = New(nil, WithNamespace("staging"))
	assert.Equal(t, "staging:inflight:m-1", journal.key("inflight:m-1"))

	// an empty namespace keeps the default
	journal = New(nil, WithNamespace(""))
	assert.Equal(t, DefaultNamespace+":k", journal.key("k"))
}

func TestJournal(t *testing.T) {
	t.Run("With Set and Get", func(t *testing.T) {
		ctx := context.TODO()
		journal := journalFromEnv(t)

		require.NoError(t, journal.Set(ctx, "inflight:m-1", []byte(`{"to":"scoring-1"}`), time.Minute))

		value, err := journal.Get(ctx, "inflight:m-1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"to":"scoring-1"}`, string(value))
	})
	t.Run("With Get miss", func(t *testing.T) {
		ctx := context.TODO()
		journal := journalFromEnv(t)

		value, err := journal.Get(ctx, "inflight:never-stored")
		require.Error(t, err)
		assert.ErrorIs(t, err, cerrors.ErrJournalMiss)
		assert.Nil(t, value)
	})
	t.Run("With Expire", func(t *testing.T) {
		ctx := context.TODO()
		journal := journalFromEnv(t)

		require.NoError(t, journal.Set(ctx, "inflight:m-2", []byte(`{}`), 0))
		require.NoError(t, journal.Expire(ctx, "inflight:m-2", 200*time.Millisecond))

		// the record vanishes once the TTL elapses
		require.Eventually(t, func() bool {
			_, err := journal.Get(ctx, "inflight:m-2")
			return err != nil
		}, time.Second, 50*time.Millisecond)

		// expiring an absent key reports the miss
		err := journal.Expire(ctx, "inflight:m-2", time.Minute)
		assert.ErrorIs(t, err, cerrors.ErrJournalMiss)
	})
	t.Run("With Delete", func(t *testing.T) {
		ctx := context.TODO()
		journal := journalFromEnv(t)

		require.NoError(t, journal.Set(ctx, "inflight:m-3", []byte(`{}`), time.Minute))
		require.NoError(t, journal.Delete(ctx, "inflight:m-3"))

		_, err := journal.Get(ctx, "inflight:m-3")
		assert.ErrorIs(t, err, cerrors.ErrJournalMiss)

		// deleting twice is a no-op
		require.NoError(t, journal.Delete(ctx, "inflight:m-3"))
	})
}
