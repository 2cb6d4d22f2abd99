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

// Package errors defines the sentinel errors shared across the runtime.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSystemName is returned when the system name contains invalid characters.
	// A valid name must consist of only alphanumeric characters ([a-zA-Z0-9]), with optional
	// hyphens or underscores that are not leading.
	ErrInvalidSystemName = errors.New("invalid system name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")

	// ErrDead indicates that the actor has reached a terminal state and can no
	// longer receive messages or restart.
	ErrDead = errors.New("actor is not alive")

	// ErrActorNotFound indicates that the specified actor could not be found in the registry.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorAlreadyExists is returned when spawning an actor whose identifier is already registered.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrInvalidTransition is returned when a lifecycle status change is not
	// permitted by the status graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSystemNotStarted indicates that the system has not been started before use.
	ErrSystemNotStarted = errors.New("system has not started")

	// ErrSystemAlreadyStarted is returned when starting a system that is already running.
	ErrSystemAlreadyStarted = errors.New("system has already started")

	// ErrInboxFull is returned when an actor's bounded inbox cannot accept another message.
	ErrInboxFull = errors.New("inbox is full")

	// ErrMessageExpired indicates that a message exceeded its time-to-live before delivery.
	ErrMessageExpired = errors.New("message has expired")

	// ErrInvalidMessage is returned when a message payload cannot be encoded for delivery.
	ErrInvalidMessage = errors.New("invalid message payload")

	// ErrRetriesExhausted indicates that a message burned through its retry
	// allowance without a successful delivery.
	ErrRetriesExhausted = errors.New("message delivery retries exhausted")

	// ErrRestartBudgetExhausted is returned when a supervision node has used all
	// restarts permitted within its rolling window.
	ErrRestartBudgetExhausted = errors.New("restart budget exhausted")

	// ErrRecoveryAborted indicates that an in-flight error recovery was canceled
	// before it could complete.
	ErrRecoveryAborted = errors.New("recovery aborted")

	// ErrRecoveryNotFound is returned when resolving an error identifier that has
	// no active recovery.
	ErrRecoveryNotFound = errors.New("no active recovery for error")

	// ErrFallbackNotRegistered is returned when a recovery strategy names a
	// fallback action that no caller has registered.
	ErrFallbackNotRegistered = errors.New("fallback action is not registered")

	// ErrSchedulerNotStarted is returned when attempting to use the scheduler before it has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrTaskNotFound is returned when triggering or cancelling an unknown scheduled task.
	ErrTaskNotFound = errors.New("scheduled task not found")

	// ErrKindNotRegistered is returned when looking up an actor kind that has
	// not been registered.
	ErrKindNotRegistered = errors.New("actor kind is not registered")

	// ErrInvalidKindSpec is returned when registering an actor kind without a name.
	ErrInvalidKindSpec = errors.New("invalid actor kind spec")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrShutdownTimeout is returned when a graceful shutdown exceeds its deadline.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrConsensusLost indicates that the healthy fraction of actors fell below
	// the consensus quorum.
	ErrConsensusLost = errors.New("consensus quorum lost")

	// ErrJournalMiss is returned when a message cannot be found in the delivery journal.
	ErrJournalMiss = errors.New("message not found in journal")

	// ErrTransportNotConnected is returned when publishing through a transport
	// that has not connected or has been closed.
	ErrTransportNotConnected = errors.New("transport is not connected")

	// ErrRuntimeNotReady is returned when issuing a command to a sidecar runtime
	// that has not completed its handshake.
	ErrRuntimeNotReady = errors.New("runtime is not ready")

	// ErrInvalidCommand is returned when a sidecar command has no command name.
	ErrInvalidCommand = errors.New("invalid runtime command")
)

// NewErrActorNotFound formats an ErrActorNotFound with the given actor identifier.
func NewErrActorNotFound(actorID string) error {
	return fmt.Errorf("actor=(%s) %w", actorID, ErrActorNotFound)
}

// NewErrActorAlreadyExists formats an ErrActorAlreadyExists for the given actor identifier.
func NewErrActorAlreadyExists(actorID string) error {
	return fmt.Errorf("actor=(%s) %w", actorID, ErrActorAlreadyExists)
}

// NewErrInvalidTransition formats an ErrInvalidTransition with the offending edge.
func NewErrInvalidTransition(from, to string) error {
	return fmt.Errorf("transition=(%s -> %s) %w", from, to, ErrInvalidTransition)
}

// NewErrInboxFull formats an ErrInboxFull with the actor identifier and capacity.
func NewErrInboxFull(actorID string, capacity uint64) error {
	return fmt.Errorf("actor=(%s) capacity=(%d) %w", actorID, capacity, ErrInboxFull)
}

// NewErrTaskNotFound formats an ErrTaskNotFound with the given task name.
func NewErrTaskNotFound(name string) error {
	return fmt.Errorf("task=(%s) %w", name, ErrTaskNotFound)
}

// NewErrKindNotRegistered formats an ErrKindNotRegistered with the given kind.
func NewErrKindNotRegistered(kind string) error {
	return fmt.Errorf("kind=(%s) %w", kind, ErrKindNotRegistered)
}

// NewErrFallbackNotRegistered formats an ErrFallbackNotRegistered with the action name.
func NewErrFallbackNotRegistered(action string) error {
	return fmt.Errorf("action=(%s) %w", action, ErrFallbackNotRegistered)
}

// NewErrRestartBudgetExhausted formats an ErrRestartBudgetExhausted for the given actor.
func NewErrRestartBudgetExhausted(actorID string) error {
	return fmt.Errorf("actor=(%s) %w", actorID, ErrRestartBudgetExhausted)
}

// NewErrDead wraps a base error with ErrDead for additional context.
func NewErrDead(err error) error {
	return errors.Join(ErrDead, err)
}

// PanicError wraps a recovered panic value so it can travel through the error
// recovery pipeline like any other failure.
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
