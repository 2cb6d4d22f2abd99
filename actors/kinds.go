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
	"context"

	"github.com/seanchatmangpt/citty-sub010/supervision"
)

// PreStartHook runs before an actor of the kind goes Active, on spawn and on
// every restart attempt. An error fails the spawn (the record is rolled back)
// or the restart attempt (retried up to the supervision budget).
type PreStartHook func(ctx context.Context, actor *Actor) error

// KindSpec declares the defaults applied to every actor spawned with a kind.
// Zero fields fall back to the system defaults.
type KindSpec struct {
	// Kind is the unique kind name. Required when registering.
	Kind string
	// Capabilities lists the operations actors of this kind advertise.
	Capabilities []string
	// Limits caps the resources of each actor.
	Limits ResourceLimits
	// Supervision is the policy the actor registers under its parent with.
	Supervision supervision.Config
	// AutoRestart lets the health monitor restart the actor after missed
	// heartbeats. Unregistered kinds get it enabled.
	AutoRestart bool
	// PreStart, when set, initializes the actor before it goes Active.
	PreStart PreStartHook
}

// DefaultKindSpec returns the defaults applied when a kind was never registered.
func DefaultKindSpec(kind string) KindSpec {
	return KindSpec{
		Kind:        kind,
		Limits:      DefaultResourceLimits(),
		Supervision: supervision.DefaultConfig(),
		AutoRestart: true,
	}
}

// sanitize fills zero fields with the system defaults.
func (s KindSpec) sanitize() KindSpec {
	defaults := DefaultResourceLimits()
	if s.Limits.InboxCapacity == 0 {
		s.Limits.InboxCapacity = defaults.InboxCapacity
	}
	if s.Limits.MemoryLimitBytes == 0 {
		s.Limits.MemoryLimitBytes = defaults.MemoryLimitBytes
	}
	if s.Limits.CPUQuotaMillis == 0 {
		s.Limits.CPUQuotaMillis = defaults.CPUQuotaMillis
	}
	if s.Supervision.Window == 0 && s.Supervision.MaxRestarts == 0 {
		s.Supervision = supervision.DefaultConfig()
	}
	s.Supervision.Sanitize()
	return s
}
