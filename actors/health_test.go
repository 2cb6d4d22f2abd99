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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/supervision"
)

func TestHealthState(t *testing.T) {
	assert.Equal(t, Healthy, StateOf(100))
	assert.Equal(t, Healthy, StateOf(80.1))
	assert.Equal(t, Degraded, StateOf(80))
	assert.Equal(t, Degraded, StateOf(50.1))
	assert.Equal(t, Failed, StateOf(50))
	assert.Equal(t, Failed, StateOf(0))

	assert.Equal(t, "healthy", Healthy.String())
	assert.Equal(t, "degraded", Degraded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", HealthState(42).String())
}

func TestHealthMonitor(t *testing.T) {
	t.Run("With probe stamping heartbeats", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.TODO()

		first, err := f.registry.Spawn(ctx, "worker", WithActorID("worker-1"))
		require.NoError(t, err)
		second, err := f.registry.Spawn(ctx, "worker", WithActorID("worker-2"))
		require.NoError(t, err)

		f.clock.Advance(10 * time.Second)
		sub := f.subscribe(events.TopicHealth)
		require.NoError(t, f.health.Probe(ctx))

		// heartbeats are fire and forget: stamped, never tracked
		assert.Equal(t, f.clock.Now(), first.LastHeartbeat())
		assert.Equal(t, f.clock.Now(), second.LastHeartbeat())
		assert.Zero(t, f.router.InflightLen())
		assert.Zero(t, f.router.PendingLen())

		// quiet actors settle to Idle and still count healthy
		assert.Equal(t, Idle, first.Status())
		assert.Equal(t, Idle, second.Status())
		assert.Equal(t, float64(100), f.health.Score())
		assert.Equal(t, Healthy, f.health.State())

		batch := drainEvents(sub)
		assert.Empty(t, eventsOfKind(batch, events.KindHeartbeatMissed))
		reports := eventsOfKind(batch, events.KindHealthReport)
		require.Len(t, reports, 1)
		report := reports[0].(events.HealthReport)
		assert.Equal(t, 2, report.Healthy)
		assert.Equal(t, 2, report.Total)
		assert.Equal(t, float64(100), report.Score)
		assert.Equal(t, "healthy", report.State)
	})
	t.Run("With missed heartbeat and supervised restart", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.TODO()

		actor, err := f.registry.Spawn(ctx, "worker",
			WithActorID("worker-1"),
			WithLimits(ResourceLimits{InboxCapacity: 1}))
		require.NoError(t, err)
		// a jammed inbox makes the probe miss its touch
		require.NoError(t, actor.Inbox().Enqueue(Message{ID: "occupier", To: "worker-1"}))

		f.clock.Advance(21 * time.Second)
		sub := f.subscribe(events.TopicHealth, events.TopicLifecycle)
		require.NoError(t, f.health.Probe(ctx))

		assert.Equal(t, Active, actor.Status())
		assert.Equal(t, 1, actor.Restarts())
		assert.Equal(t, f.clock.Now(), actor.LastHeartbeat())
		// the restart flushed the jammed inbox
		assert.True(t, actor.Inbox().IsEmpty())

		batch := drainEvents(sub)
		missed := eventsOfKind(batch, events.KindHeartbeatMissed)
		require.Len(t, missed, 1)
		assert.Equal(t, "worker-1", missed[0].(events.HeartbeatMissed).ActorID)
		require.Len(t, eventsOfKind(batch, events.KindActorRestarted), 1)

		// the report reflects the recovered runtime
		reports := eventsOfKind(batch, events.KindHealthReport)
		require.Len(t, reports, 1)
		assert.Equal(t, float64(100), reports[0].(events.HealthReport).Score)
	})
	t.Run("With restart budget exhausted", func(t *testing.T) {
		f := newFixture(t, supervision.Config{
			Strategy:    supervision.OneForOne,
			MaxRestarts: 0,
			Window:      time.Minute,
		})
		ctx := context.TODO()

		actor, err := f.registry.Spawn(ctx, "worker",
			WithActorID("worker-1"),
			WithLimits(ResourceLimits{InboxCapacity: 1}))
		require.NoError(t, err)
		require.NoError(t, actor.Inbox().Enqueue(Message{ID: "occupier", To: "worker-1"}))

		f.clock.Advance(21 * time.Second)
		sub := f.subscribe(events.TopicHealth, events.TopicFaults)
		require.NoError(t, f.health.Probe(ctx))

		assert.Equal(t, Crashed, actor.Status())
		assert.Zero(t, actor.Restarts())

		batch := drainEvents(sub)
		escalated := eventsOfKind(batch, events.KindSupervisionEscalated)
		require.Len(t, escalated, 1)
		assert.Equal(t, "worker-1", escalated[0].(events.SupervisionEscalated).ActorID)
		reports := eventsOfKind(batch, events.KindHealthReport)
		require.Len(t, reports, 1)
		assert.Equal(t, "failed", reports[0].(events.HealthReport).State)

		// terminal actors drop out of the next probe entirely
		require.NoError(t, f.health.Probe(ctx))
		assert.Empty(t, eventsOfKind(drainEvents(sub), events.KindHeartbeatMissed))
	})
	t.Run("With stale heartbeat and no auto restart", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.TODO()

		require.NoError(t, f.registry.RegisterKind(KindSpec{
			Kind:        "manual",
			Limits:      ResourceLimits{InboxCapacity: 1},
			AutoRestart: false,
		}))
		actor, err := f.registry.Spawn(ctx, "manual", WithActorID("worker-1"))
		require.NoError(t, err)
		require.NoError(t, actor.Inbox().Enqueue(Message{ID: "occupier", To: "worker-1"}))

		f.clock.Advance(21 * time.Second)
		sub := f.subscribe(events.TopicHealth)
		require.NoError(t, f.health.Probe(ctx))

		// reported but left alone
		require.Len(t, eventsOfKind(drainEvents(sub), events.KindHeartbeatMissed), 1)
		assert.Equal(t, Active, actor.Status())
		assert.Zero(t, actor.Restarts())

		// an active actor with a stale heartbeat is not healthy
		assert.Equal(t, float64(0), f.health.Score())
		assert.Equal(t, Failed, f.health.State())
	})
	t.Run("With suspended actors degrading the score", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.TODO()
		sub := f.subscribe(events.TopicHealth)

		for _, id := range []string{"worker-1", "worker-2", "worker-3"} {
			_, err := f.registry.Spawn(ctx, "worker", WithActorID(id))
			require.NoError(t, err)
		}
		require.NoError(t, f.registry.Suspend("worker-3"))

		f.clock.Advance(5 * time.Second)
		require.NoError(t, f.health.Probe(ctx))

		assert.InDelta(t, 66.67, f.health.Score(), 0.1)
		assert.Equal(t, Degraded, f.health.State())

		// two thirds healthy holds the quorum exactly
		require.NoError(t, f.health.VerifyConsensus())
		maintained := eventsOfKind(drainEvents(sub), events.KindConsensusMaintained)
		require.Len(t, maintained, 1)
		assert.Equal(t, 2, maintained[0].(events.ConsensusMaintained).Healthy)
		assert.Equal(t, 3, maintained[0].(events.ConsensusMaintained).Total)

		require.NoError(t, f.registry.Suspend("worker-2"))
		err := f.health.VerifyConsensus()
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConsensusLost)
		assert.Equal(t, Failed, f.health.State())

		lost := eventsOfKind(drainEvents(sub), events.KindConsensusLost)
		require.Len(t, lost, 1)
		assert.Equal(t, 1, lost[0].(events.ConsensusLost).Healthy)
		assert.Equal(t, 3, lost[0].(events.ConsensusLost).Total)
	})
	t.Run("With an empty runtime", func(t *testing.T) {
		f := newFixture(t)

		assert.Equal(t, float64(100), f.health.Score())
		assert.Equal(t, Healthy, f.health.State())
		require.NoError(t, f.health.VerifyConsensus())
	})
}
