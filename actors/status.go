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

// Status represents the lifecycle state of an actor.
type Status int

const (
	// Starting is the initial state while the actor record is being set up.
	Starting Status = iota
	// Active means the actor is alive and accepting messages.
	Active
	// Idle means the actor is alive with nothing to do.
	Idle
	// Busy means the actor is processing its inbox.
	Busy
	// Suspended means the actor was cut off by a network partition fault.
	Suspended
	// RestartPending means supervision decided to restart the actor and the
	// attempt is in progress.
	RestartPending
	// Crashed is terminal. A crashed actor only comes back through an
	// explicit operator respawn.
	Crashed
	// Stopping means the actor accepted a shutdown and is draining.
	Stopping
	// Stopped is terminal. The drain completed and the record is retired.
	Stopped
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Suspended:
		return "suspended"
	case RestartPending:
		return "restart_pending"
	case Crashed:
		return "crashed"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further transitions.
// Terminal actors only come back through an operator respawn.
func (s Status) Terminal() bool {
	return s == Crashed || s == Stopped
}

// Deliverable reports whether a local dispatch can reach an actor in this
// status. Suspended actors are partitioned away and draining or terminal
// actors no longer consume their inbox.
func (s Status) Deliverable() bool {
	switch s {
	case Active, Idle, Busy, Starting:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the edge from s to target is part of the
// lifecycle graph. Idle and Busy only reach each other through Active, and a
// Suspended actor can only be stopped.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case Starting:
		return target == Active || target == Stopping
	case Active:
		switch target {
		case Idle, Busy, Suspended, RestartPending, Crashed, Stopping:
			return true
		}
		return false
	case Idle, Busy:
		switch target {
		case Active, Suspended, RestartPending, Crashed, Stopping:
			return true
		}
		return false
	case Suspended:
		return target == Stopping
	case RestartPending:
		return target == Active || target == Crashed || target == Stopping
	case Stopping:
		return target == Stopped
	default:
		return false
	}
}
