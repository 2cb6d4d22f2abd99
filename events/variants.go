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

import "time"

// ActorSpawned reports that an actor entered the registry. Respawns of a
// terminated actor report here as well since the replacement is a fresh record.
type ActorSpawned struct {
	ActorID   string
	ActorName string
	ActorKind string
	At        time.Time
}

func (ActorSpawned) Kind() Kind    { return KindActorSpawned }
func (ActorSpawned) Topic() string { return TopicLifecycle }
func (ActorSpawned) sealed()       {}

// ActorStatusChanged reports a lifecycle edge taken by an actor.
type ActorStatusChanged struct {
	ActorID string
	From    string
	To      string
	At      time.Time
}

func (ActorStatusChanged) Kind() Kind    { return KindActorStatusChanged }
func (ActorStatusChanged) Topic() string { return TopicLifecycle }
func (ActorStatusChanged) sealed()       {}

// ActorRestarted reports that a supervised actor came back after a failure.
type ActorRestarted struct {
	ActorID  string
	Restarts int
	At       time.Time
}

func (ActorRestarted) Kind() Kind    { return KindActorRestarted }
func (ActorRestarted) Topic() string { return TopicLifecycle }
func (ActorRestarted) sealed()       {}

// HeartbeatMissed reports an actor whose last heartbeat is older than twice
// the probe interval.
type HeartbeatMissed struct {
	ActorID       string
	LastHeartbeat time.Time
	At            time.Time
}

func (HeartbeatMissed) Kind() Kind    { return KindHeartbeatMissed }
func (HeartbeatMissed) Topic() string { return TopicHealth }
func (HeartbeatMissed) sealed()       {}

// DeliveryFailed is published exactly once per message, when its retry
// allowance is exhausted or its time-to-live has passed.
type DeliveryFailed struct {
	MessageID   string
	SenderID    string
	RecipientID string
	Attempts    int
	Reason      string
	At          time.Time
}

func (DeliveryFailed) Kind() Kind    { return KindDeliveryFailed }
func (DeliveryFailed) Topic() string { return TopicDelivery }
func (DeliveryFailed) sealed()       {}

// ErrorEscalated carries a flattened copy of an error record that crossed an
// escalation threshold. Published exactly once per record.
type ErrorEscalated struct {
	ErrorID  string
	ActorID  string
	Category string
	Severity string
	Message  string
	Attempts int
	At       time.Time
}

func (ErrorEscalated) Kind() Kind    { return KindErrorEscalated }
func (ErrorEscalated) Topic() string { return TopicFaults }
func (ErrorEscalated) sealed()       {}

// ErrorResolved reports that recovery for an error record completed.
type ErrorResolved struct {
	ErrorID  string
	ActorID  string
	Category string
	At       time.Time
}

func (ErrorResolved) Kind() Kind    { return KindErrorResolved }
func (ErrorResolved) Topic() string { return TopicFaults }
func (ErrorResolved) sealed()       {}

// RecoveryExhausted reports that an error record burned through its maximum
// recovery attempts without resolving.
type RecoveryExhausted struct {
	ErrorID  string
	ActorID  string
	Category string
	Attempts int
	At       time.Time
}

func (RecoveryExhausted) Kind() Kind    { return KindRecoveryExhausted }
func (RecoveryExhausted) Topic() string { return TopicFaults }
func (RecoveryExhausted) sealed()       {}

// SupervisionEscalated reports that a supervision subtree exhausted its
// restart budget and pushed the failure to its parent, or to the system when
// the root itself gave up.
type SupervisionEscalated struct {
	ActorID  string
	Strategy string
	Restarts int
	Window   time.Duration
	At       time.Time
}

func (SupervisionEscalated) Kind() Kind    { return KindSupervisionEscalated }
func (SupervisionEscalated) Topic() string { return TopicFaults }
func (SupervisionEscalated) sealed()       {}

// HealthReport carries the outcome of a monitoring sweep.
type HealthReport struct {
	Healthy int
	Total   int
	Score   float64
	State   string
	At      time.Time
}

func (HealthReport) Kind() Kind    { return KindHealthReport }
func (HealthReport) Topic() string { return TopicHealth }
func (HealthReport) sealed()       {}

// ConsensusLost reports that the healthy fraction of actors fell below the
// consensus quorum.
type ConsensusLost struct {
	Healthy int
	Total   int
	Quorum  float64
	At      time.Time
}

func (ConsensusLost) Kind() Kind    { return KindConsensusLost }
func (ConsensusLost) Topic() string { return TopicHealth }
func (ConsensusLost) sealed()       {}

// ConsensusMaintained reports a consensus check that found the quorum intact.
type ConsensusMaintained struct {
	Healthy int
	Total   int
	Quorum  float64
	At      time.Time
}

func (ConsensusMaintained) Kind() Kind    { return KindConsensusMaintained }
func (ConsensusMaintained) Topic() string { return TopicHealth }
func (ConsensusMaintained) sealed()       {}
