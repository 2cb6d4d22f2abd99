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

// Package actors hosts the fault-tolerant actor runtime: a registry of
// supervised actor records, a priority message router with retry and circuit
// breaking, a heartbeat-driven health monitor and the System facade that
// wires them to supervision, recovery, scheduling and telemetry.
package actors

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/supervision"
)

// ResourceLimits caps what a single actor may consume.
type ResourceLimits struct {
	// InboxCapacity bounds the actor's message buffer.
	InboxCapacity uint64
	// MemoryLimitBytes is the advisory memory ceiling for the actor's worker.
	MemoryLimitBytes uint64
	// CPUQuotaMillis is the advisory CPU allowance in millicores.
	CPUQuotaMillis uint64
}

// DefaultResourceLimits returns the limits applied when a kind does not set
// its own.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		InboxCapacity:    1024,
		MemoryLimitBytes: 512 << 20,
		CPUQuotaMillis:   1000,
	}
}

// Actor is the bookkeeping record for one supervised actor. The registry owns
// creation and removal; status, heartbeat and restart count are guarded by the
// actor's own lock so the router and the health monitor can touch them
// concurrently.
type Actor struct {
	id           string
	name         string
	kind         string
	parentID     string
	capabilities mapset.Set[string]
	limits       ResourceLimits
	supervision  supervision.Config
	autoRestart  bool
	createdAt    time.Time

	mu            sync.RWMutex
	status        Status
	inbox         *Inbox
	lastHeartbeat time.Time
	restarts      int
}

// ID returns the actor identifier.
func (a *Actor) ID() string {
	return a.id
}

// Name returns the display name. Falls back to the identifier when the spawn
// did not set one.
func (a *Actor) Name() string {
	if a.name == "" {
		return a.id
	}
	return a.name
}

// Kind returns the actor kind the record was spawned with.
func (a *Actor) Kind() string {
	return a.kind
}

// ParentID returns the identifier of the supervising actor. The root
// supervisor when the spawn did not name a parent.
func (a *Actor) ParentID() string {
	return a.parentID
}

// Capabilities returns the set of operations the actor advertises.
func (a *Actor) Capabilities() mapset.Set[string] {
	return a.capabilities
}

// CanHandle reports whether the actor advertises the given capability.
func (a *Actor) CanHandle(capability string) bool {
	return a.capabilities.Contains(capability)
}

// Inbox returns the actor's bounded message buffer. Respawn swaps the buffer
// for a fresh one, so callers should not hold the returned pointer across
// lifecycle changes.
func (a *Actor) Inbox() *Inbox {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.inbox
}

// Limits returns the actor's resource limits.
func (a *Actor) Limits() ResourceLimits {
	return a.limits
}

// SupervisionConfig returns the supervision settings the actor registered
// with.
func (a *Actor) SupervisionConfig() supervision.Config {
	return a.supervision
}

// AutoRestart reports whether the health monitor may restart the actor after
// missed heartbeats.
func (a *Actor) AutoRestart() bool {
	return a.autoRestart
}

// CreatedAt returns the spawn time.
func (a *Actor) CreatedAt() time.Time {
	return a.createdAt
}

// Status returns the current lifecycle state.
func (a *Actor) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// LastHeartbeat returns the time of the most recent liveness signal.
func (a *Actor) LastHeartbeat() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastHeartbeat
}

// Restarts returns how many times the actor has been restarted.
func (a *Actor) Restarts() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.restarts
}

// transition moves the actor along a lifecycle edge. It returns the previous
// status, or ErrInvalidTransition when the edge is not part of the graph.
func (a *Actor) transition(to Status) (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	from := a.status
	if !from.CanTransition(to) {
		return from, errors.NewErrInvalidTransition(from.String(), to.String())
	}
	a.status = to
	return from, nil
}

// reset forces the actor back to Active with a fresh inbox. Operator respawn
// bypasses the lifecycle graph, terminal states included.
func (a *Actor) reset(now time.Time) Status {
	a.mu.Lock()
	from := a.status
	old := a.inbox
	a.status = Active
	a.lastHeartbeat = now
	a.inbox = NewInbox(a.id, a.limits.InboxCapacity)
	a.mu.Unlock()
	old.Dispose()
	return from
}

// refreshInbox swaps in an empty buffer, dropping whatever the previous
// incarnation left behind.
func (a *Actor) refreshInbox() {
	a.mu.Lock()
	old := a.inbox
	a.inbox = NewInbox(a.id, a.limits.InboxCapacity)
	a.mu.Unlock()
	old.Dispose()
}

// touch stamps the heartbeat clock.
func (a *Actor) touch(now time.Time) {
	a.mu.Lock()
	a.lastHeartbeat = now
	a.mu.Unlock()
}

// markRestarted increments the restart counter and returns the new total.
func (a *Actor) markRestarted() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restarts++
	return a.restarts
}

// heartbeatAge returns how long ago the last liveness signal arrived.
func (a *Actor) heartbeatAge(now time.Time) time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return now.Sub(a.lastHeartbeat)
}
