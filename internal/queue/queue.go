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

// Package queue provides an unbounded concurrency-safe FIFO used as the
// subscriber buffer of the event stream.
package queue

import "sync"

type node[T any] struct {
	value T
	next  *node[T]
}

// Queue is an unbounded FIFO safe for concurrent producers and consumers.
type Queue[T any] struct {
	mu     sync.Mutex
	head   *node[T]
	tail   *node[T]
	length int
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	sentinel := new(node[T])
	return &Queue[T]{head: sentinel, tail: sentinel}
}

// Push appends the given value to the back of the queue.
func (q *Queue[T]) Push(value T) {
	n := &node[T]{value: value}
	q.mu.Lock()
	q.tail.next = n
	q.tail = n
	q.length++
	q.mu.Unlock()
}

// Pop removes and returns the value at the front of the queue. The second
// return value is false when the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	first := q.head.next
	if first == nil {
		var zero T
		return zero, false
	}
	q.head.next = first.next
	if q.tail == first {
		q.tail = q.head
	}
	q.length--
	value := first.value
	var zero T
	first.value = zero
	return value, true
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// IsEmpty returns true when the queue holds no values.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}
