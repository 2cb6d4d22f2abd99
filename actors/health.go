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
	"fmt"
	"time"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/supervision"
)

const (
	// DefaultHeartbeatInterval is the probe cadence. An actor whose last
	// heartbeat is older than twice the interval counts as missed.
	DefaultHeartbeatInterval = 10 * time.Second
	// consensusQuorum is the healthy fraction the cluster must keep for
	// consensus to hold.
	consensusQuorum = 2.0 / 3.0
	// healthMonitorID is the sender identifier on heartbeat probes.
	healthMonitorID = "health-monitor"
)

// HealthState classifies the runtime by its fault tolerance score.
type HealthState int

const (
	// Healthy means more than 80 percent of actors respond.
	Healthy HealthState = iota
	// Degraded means the score dropped to 80 or below but stays above 50.
	Degraded
	// Failed means half the actors or more are gone.
	Failed
)

// String implements fmt.Stringer.
func (s HealthState) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateOf classifies a fault tolerance score.
func StateOf(score float64) HealthState {
	switch {
	case score > 80:
		return Healthy
	case score > 50:
		return Degraded
	default:
		return Failed
	}
}

// HealthMonitor watches actor liveness. Every probe routes a low-priority
// heartbeat to each resident actor, reports actors whose heartbeat went
// stale and hands auto-restartable ones to supervision.
type HealthMonitor struct {
	logger   log.Logger
	clock    func() time.Time
	stream   eventstream.Stream
	registry *Registry
	router   *Router
	tree     *supervision.Tree
	interval time.Duration
}

func newHealthMonitor(
	logger log.Logger,
	clock func() time.Time,
	stream eventstream.Stream,
	registry *Registry,
	router *Router,
	tree *supervision.Tree,
	interval time.Duration,
) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &HealthMonitor{
		logger:   logger,
		clock:    clock,
		stream:   stream,
		registry: registry,
		router:   router,
		tree:     tree,
		interval: interval,
	}
}

// Interval returns the probe cadence.
func (m *HealthMonitor) Interval() time.Duration {
	return m.interval
}

// Probe is the periodic monitoring pass: heartbeat every resident actor,
// settle quiet ones to Idle, report stale ones and publish a HealthReport.
// Wired into the scheduler as the health.probe task.
func (m *HealthMonitor) Probe(ctx context.Context) error {
	actors := m.registry.Actors()

	for _, actor := range actors {
		status := actor.Status()
		if status.Terminal() || status == Stopping {
			continue
		}
		probe := Message{
			From:     healthMonitorID,
			To:       actor.ID(),
			Kind:     HeartbeatKind,
			Priority: PriorityLow,
		}
		if _, err := m.router.Submit(ctx, probe); err != nil {
			m.logger.Debugf("heartbeat to actor=(%s) skipped: %v", actor.ID(), err)
		}
	}
	m.router.Dispatch(ctx)

	for _, actor := range actors {
		if actor.Status() == Active && actor.Inbox().IsEmpty() {
			if from, err := actor.transition(Idle); err == nil {
				m.registry.publishStatus(actor, from, Idle)
			}
		}
	}

	now := m.clock()
	for _, actor := range actors {
		status := actor.Status()
		if status.Terminal() || status == Stopping {
			continue
		}
		if actor.heartbeatAge(now) <= 2*m.interval {
			continue
		}

		m.publish(events.HeartbeatMissed{
			ActorID:       actor.ID(),
			LastHeartbeat: actor.LastHeartbeat(),
			At:            now,
		})
		m.logger.Warnf("actor=(%s) missed its heartbeat, last seen at %s", actor.ID(), actor.LastHeartbeat())

		// suspended actors sit outside the restart graph, the operator
		// decides their fate
		if actor.AutoRestart() && status.CanTransition(RestartPending) {
			m.superviseRestart(ctx, actor)
		}
	}

	healthy, total := m.counts()
	score := scoreOf(healthy, total)
	m.publish(events.HealthReport{
		Healthy: healthy,
		Total:   total,
		Score:   score,
		State:   StateOf(score).String(),
		At:      now,
	})
	return nil
}

// superviseRestart routes a failure through the supervision tree and executes
// the resulting restart instruction. An exhausted budget crashes the actor;
// the tree already published the escalation.
func (m *HealthMonitor) superviseRestart(ctx context.Context, actor *Actor) {
	decision, err := m.tree.HandleFailure(actor.ID())
	if err != nil {
		m.logger.Errorf("supervision gave up on actor=(%s): %v", actor.ID(), err)
		if from, terr := actor.transition(Crashed); terr == nil {
			m.registry.publishStatus(actor, from, Crashed)
		}
		return
	}
	for _, id := range decision.Restart {
		if err := m.registry.restartSanctioned(ctx, id); err != nil {
			m.logger.Errorf("supervised restart of actor=(%s) failed: %v", id, err)
		}
	}
}

// counts tallies the liveness snapshot. Gracefully retired actors drop out of
// the total, crashed and suspended ones weigh it down.
func (m *HealthMonitor) counts() (healthy, total int) {
	now := m.clock()
	for _, actor := range m.registry.Actors() {
		status := actor.Status()
		if status == Stopped {
			continue
		}
		total++
		switch status {
		case Active, Idle, Busy:
			if actor.heartbeatAge(now) <= 2*m.interval {
				healthy++
			}
		}
	}
	return healthy, total
}

// scoreOf turns a liveness tally into the 0 to 100 fault tolerance score. An
// empty runtime scores a vacuous 100.
func scoreOf(healthy, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(healthy) / float64(total) * 100
}

// Score returns the current fault tolerance score.
func (m *HealthMonitor) Score() float64 {
	healthy, total := m.counts()
	return scoreOf(healthy, total)
}

// State returns the current health classification.
func (m *HealthMonitor) State() HealthState {
	return StateOf(m.Score())
}

// VerifyConsensus checks that at least two thirds of the resident actors are
// healthy. The outcome is published either way; a lost quorum additionally
// returns ErrConsensusLost.
func (m *HealthMonitor) VerifyConsensus() error {
	healthy, total := m.counts()
	now := m.clock()

	if total > 0 && float64(healthy)/float64(total) < consensusQuorum {
		m.publish(events.ConsensusLost{Healthy: healthy, Total: total, Quorum: consensusQuorum, At: now})
		m.logger.Warnf("consensus lost: %d of %d actors healthy", healthy, total)
		return fmt.Errorf("healthy=(%d) total=(%d) %w", healthy, total, errors.ErrConsensusLost)
	}

	m.publish(events.ConsensusMaintained{Healthy: healthy, Total: total, Quorum: consensusQuorum, At: now})
	return nil
}

func (m *HealthMonitor) publish(event events.Event) {
	if m.stream == nil {
		return
	}
	m.stream.Publish(event)
}
