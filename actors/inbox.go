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
	gods "github.com/Workiva/go-datastructures/queue"

	"github.com/seanchatmangpt/citty-sub010/errors"
)

// Inbox is a bounded FIFO message buffer backed by a pre-allocated ring
// buffer. Enqueue never blocks: when the buffer is at capacity the message is
// rejected with ErrInboxFull and the caller decides whether to retry or drop.
type Inbox struct {
	owner    string
	capacity uint64
	buffer   *gods.RingBuffer
}

// NewInbox creates an Inbox holding at most capacity messages for the given
// actor.
func NewInbox(owner string, capacity uint64) *Inbox {
	return &Inbox{
		owner:    owner,
		capacity: capacity,
		buffer:   gods.NewRingBuffer(capacity),
	}
}

// Enqueue appends a message. It returns ErrInboxFull when the buffer is at
// capacity and ErrDead once the inbox has been disposed.
func (i *Inbox) Enqueue(msg Message) error {
	ok, err := i.buffer.Offer(msg)
	if err != nil {
		return errors.NewErrDead(err)
	}
	if !ok {
		return errors.NewErrInboxFull(i.owner, i.capacity)
	}
	return nil
}

// Dequeue removes and returns the oldest message. The second return value is
// false when the inbox is empty or disposed. Intended for a single consumer;
// the emptiness check is a snapshot.
func (i *Inbox) Dequeue() (Message, bool) {
	if i.buffer.Len() > 0 {
		item, err := i.buffer.Get()
		if err != nil {
			return Message{}, false
		}
		if msg, ok := item.(Message); ok {
			return msg, true
		}
	}
	return Message{}, false
}

// IsEmpty returns true when the inbox holds no messages.
func (i *Inbox) IsEmpty() bool {
	return i.buffer.Len() == 0
}

// Len returns the number of buffered messages.
func (i *Inbox) Len() uint64 {
	return i.buffer.Len()
}

// Capacity returns the maximum number of messages the inbox can hold.
func (i *Inbox) Capacity() uint64 {
	return i.capacity
}

// Dispose frees the buffer and unblocks any pending readers. The inbox
// rejects all traffic afterwards.
func (i *Inbox) Dispose() {
	i.buffer.Dispose()
}
