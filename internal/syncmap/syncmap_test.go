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

package syncmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMap(t *testing.T) {
	sm := New[string, int]()
	require.Zero(t, sm.Len())

	sm.Set("a", 1)
	sm.Set("b", 2)
	require.Equal(t, 2, sm.Len())

	v, ok := sm.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = sm.Get("missing")
	require.False(t, ok)

	require.True(t, sm.SetIfAbsent("c", 3))
	require.False(t, sm.SetIfAbsent("c", 30))
	v, _ = sm.Get("c")
	assert.Equal(t, 3, v)

	keys := sm.Keys()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
	values := sm.Values()
	assert.ElementsMatch(t, []int{1, 2, 3}, values)

	sum := 0
	sm.Range(func(_ string, v int) { sum += v })
	assert.Equal(t, 6, sum)

	sm.Delete("a")
	_, ok = sm.Get("a")
	require.False(t, ok)

	sm.Reset()
	require.Zero(t, sm.Len())
}

func TestSyncMapConcurrentAccess(t *testing.T) {
	sm := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sm.Set(i, i*i)
			_, _ = sm.Get(i)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, sm.Len())
}
