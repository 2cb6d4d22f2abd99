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

import "time"

// Priority ranks messages for dispatch. Higher values are dequeued first.
type Priority int

const (
	// PriorityLow is used for background traffic such as health probes.
	PriorityLow Priority = iota + 1
	// PriorityNormal is the default for application messages. Submissions
	// without an explicit priority are normalized to it.
	PriorityNormal
	// PriorityHigh jumps ahead of normal traffic.
	PriorityHigh
	// PriorityUrgent preempts everything except critical control traffic.
	PriorityUrgent
	// PriorityCritical is reserved for control messages such as shutdown.
	PriorityCritical
)

// String implements fmt.Stringer.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

const (
	// HeartbeatKind marks liveness probes. Heartbeats are fire-and-forget:
	// a successful dispatch stamps the recipient's heartbeat and no
	// acknowledgement is expected.
	HeartbeatKind = "heartbeat"
	// ShutdownKind marks the control message appended to an actor's inbox
	// when it is asked to stop.
	ShutdownKind = "shutdown"
)

// Message is the unit of traffic between actors. The zero values of ID,
// Timestamp and MaxRetries are filled in by the router on submission.
type Message struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Kind       string    `json:"kind"`
	Payload    any       `json:"payload,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Priority   Priority  `json:"priority"`
	RetryCount int       `json:"retryCount"`
	MaxRetries int       `json:"maxRetries"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Expired reports whether the message's time-to-live has passed. A zero
// ExpiresAt never expires.
func (m Message) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}
