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

package actors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanchatmangpt/citty-sub010/errors"
)

func TestInbox(t *testing.T) {
	t.Run("With FIFO order", func(t *testing.T) {
		inbox := NewInbox("scoring-1", 4)
		require.NoError(t, inbox.Enqueue(Message{ID: "m-1"}))
		require.NoError(t, inbox.Enqueue(Message{ID: "m-2"}))
		require.NoError(t, inbox.Enqueue(Message{ID: "m-3"}))
		assert.EqualValues(t, 3, inbox.Len())
		assert.False(t, inbox.IsEmpty())

		first, ok := inbox.Dequeue()
		require.True(t, ok)
		assert.Equal(t, "m-1", first.ID)
		second, ok := inbox.Dequeue()
		require.True(t, ok)
		assert.Equal(t, "m-2", second.ID)
		third, ok := inbox.Dequeue()
		require.True(t, ok)
		assert.Equal(t, "m-3", third.ID)
		assert.True(t, inbox.IsEmpty())
	})
	t.Run("With capacity rejection", func(t *testing.T) {
		inbox := NewInbox("scoring-1", 2)
		assert.EqualValues(t, 2, inbox.Capacity())
		require.NoError(t, inbox.Enqueue(Message{ID: "m-1"}))
		require.NoError(t, inbox.Enqueue(Message{ID: "m-2"}))

		err := inbox.Enqueue(Message{ID: "m-3"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInboxFull)
		assert.EqualValues(t, 2, inbox.Len())
	})
	t.Run("With dequeue on empty", func(t *testing.T) {
		inbox := NewInbox("scoring-1", 2)
		_, ok := inbox.Dequeue()
		assert.False(t, ok)
	})
	t.Run("With dispose", func(t *testing.T) {
		inbox := NewInbox("scoring-1", 2)
		require.NoError(t, inbox.Enqueue(Message{ID: "m-1"}))
		inbox.Dispose()

		err := inbox.Enqueue(Message{ID: "m-2"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDead)
	})
}
