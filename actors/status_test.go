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
)

func TestStatusString(t *testing.T) {
	testCases := map[Status]string{
		Starting:       "starting",
		Active:         "active",
		Idle:           "idle",
		Busy:           "busy",
		Suspended:      "suspended",
		RestartPending: "restart_pending",
		Crashed:        "crashed",
		Stopping:       "stopping",
		Stopped:        "stopped",
		Status(42):     "unknown",
	}
	for status, expected := range testCases {
		assert.Equal(t, expected, status.String())
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Run("With allowed edges", func(t *testing.T) {
		allowed := []struct {
			from Status
			to   Status
		}{
			{Starting, Active},
			{Starting, Stopping},
			{Active, Idle},
			{Active, Busy},
			{Active, Suspended},
			{Active, RestartPending},
			{Active, Crashed},
			{Active, Stopping},
			{Idle, Active},
			{Idle, Suspended},
			{Idle, RestartPending},
			{Busy, Active},
			{Busy, Crashed},
			{Busy, Stopping},
			{Suspended, Stopping},
			{RestartPending, Active},
			{RestartPending, Crashed},
			{RestartPending, Stopping},
			{Stopping, Stopped},
		}
		for _, tc := range allowed {
			assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
		}
	})
	t.Run("With rejected edges", func(t *testing.T) {
		rejected := []struct {
			from Status
			to   Status
		}{
			{Idle, Busy},
			{Busy, Idle},
			{Suspended, Active},
			{Suspended, RestartPending},
			{RestartPending, Busy},
			{Active, Stopped},
			{Stopping, Active},
			{Crashed, Active},
			{Crashed, RestartPending},
			{Stopped, Active},
			{Stopped, Starting},
		}
		for _, tc := range rejected {
			assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
		}
	})
	t.Run("With terminal states", func(t *testing.T) {
		assert.True(t, Crashed.Terminal())
		assert.True(t, Stopped.Terminal())
		assert.False(t, Active.Terminal())
		assert.False(t, Stopping.Terminal())
	})
	t.Run("With deliverable states", func(t *testing.T) {
		assert.True(t, Active.Deliverable())
		assert.True(t, Idle.Deliverable())
		assert.True(t, Busy.Deliverable())
		assert.True(t, Starting.Deliverable())
		assert.False(t, Suspended.Deliverable())
		assert.False(t, RestartPending.Deliverable())
		assert.False(t, Stopping.Deliverable())
		assert.False(t, Crashed.Deliverable())
		assert.False(t, Stopped.Deliverable())
	})
}
