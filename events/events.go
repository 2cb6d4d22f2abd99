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

// Package events defines the closed set of notifications the runtime publishes
// on its event stream. The Event interface is sealed: consumers can switch on
// the concrete variants exhaustively because no type outside this package can
// satisfy it.
package events

// Topics the runtime publishes on. Subscribers pick the slice of the stream
// they care about instead of filtering the firehose.
const (
	// TopicLifecycle carries actor spawn, status change and restart events.
	TopicLifecycle = "lifecycle"
	// TopicDelivery carries terminal message delivery failures.
	TopicDelivery = "delivery"
	// TopicFaults carries error escalation, resolution and supervision events.
	TopicFaults = "faults"
	// TopicHealth carries heartbeat, health report and consensus events.
	TopicHealth = "health"
)

// Kind identifies an event variant without a type switch.
type Kind int

const (
	// KindActorSpawned tags the ActorSpawned variant.
	KindActorSpawned Kind = iota
	// KindActorStatusChanged tags the ActorStatusChanged variant.
	KindActorStatusChanged
	// KindActorRestarted tags the ActorRestarted variant.
	KindActorRestarted
	// KindHeartbeatMissed tags the HeartbeatMissed variant.
	KindHeartbeatMissed
	// KindDeliveryFailed tags the DeliveryFailed variant.
	KindDeliveryFailed
	// KindErrorEscalated tags the ErrorEscalated variant.
	KindErrorEscalated
	// KindErrorResolved tags the ErrorResolved variant.
	KindErrorResolved
	// KindRecoveryExhausted tags the RecoveryExhausted variant.
	KindRecoveryExhausted
	// KindSupervisionEscalated tags the SupervisionEscalated variant.
	KindSupervisionEscalated
	// KindHealthReport tags the HealthReport variant.
	KindHealthReport
	// KindConsensusLost tags the ConsensusLost variant.
	KindConsensusLost
	// KindConsensusMaintained tags the ConsensusMaintained variant.
	KindConsensusMaintained
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindActorSpawned:
		return "actor_spawned"
	case KindActorStatusChanged:
		return "actor_status_changed"
	case KindActorRestarted:
		return "actor_restarted"
	case KindHeartbeatMissed:
		return "heartbeat_missed"
	case KindDeliveryFailed:
		return "delivery_failed"
	case KindErrorEscalated:
		return "error_escalated"
	case KindErrorResolved:
		return "error_resolved"
	case KindRecoveryExhausted:
		return "recovery_exhausted"
	case KindSupervisionEscalated:
		return "supervision_escalated"
	case KindHealthReport:
		return "health_report"
	case KindConsensusLost:
		return "consensus_lost"
	case KindConsensusMaintained:
		return "consensus_maintained"
	default:
		return ""
	}
}

// Event is a notification published on the runtime's event stream.
//
// Note: the unexported method intentionally prevents external implementations
// so the variant set stays closed.
type Event interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Topic returns the stream topic the event is published on.
	Topic() string

	sealed()
}
