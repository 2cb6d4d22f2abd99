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

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants(t *testing.T) {
	testCases := []struct {
		event Event
		kind  Kind
		topic string
	}{
		{ActorSpawned{}, KindActorSpawned, TopicLifecycle},
		{ActorStatusChanged{}, KindActorStatusChanged, TopicLifecycle},
		{ActorRestarted{}, KindActorRestarted, TopicLifecycle},
		{HeartbeatMissed{}, KindHeartbeatMissed, TopicHealth},
		{DeliveryFailed{}, KindDeliveryFailed, TopicDelivery},
		{ErrorEscalated{}, KindErrorEscalated, TopicFaults},
		{ErrorResolved{}, KindErrorResolved, TopicFaults},
		{RecoveryExhausted{}, KindRecoveryExhausted, TopicFaults},
		{SupervisionEscalated{}, KindSupervisionEscalated, TopicFaults},
		{HealthReport{}, KindHealthReport, TopicHealth},
		{ConsensusLost{}, KindConsensusLost, TopicHealth},
		{ConsensusMaintained{}, KindConsensusMaintained, TopicHealth},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			require.Equal(t, tc.kind, tc.event.Kind())
			require.Equal(t, tc.topic, tc.event.Topic())
			assert.NotEmpty(t, tc.kind.String())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "actor_spawned", KindActorSpawned.String())
	assert.Equal(t, "delivery_failed", KindDeliveryFailed.String())
	assert.Equal(t, "consensus_maintained", KindConsensusMaintained.String())
	assert.Empty(t, Kind(99).String())
}
