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
	hp "container/heap"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/seanchatmangpt/citty-sub010/breaker"
	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/metric"
	"github.com/seanchatmangpt/citty-sub010/transport"
)

const (
	// DefaultAckTimeout is how long a delivered message may stay
	// unacknowledged before the retry sweep acts on it.
	DefaultAckTimeout = 30 * time.Second
	// DefaultRetryBackoff is the base delay before the first redelivery. It
	// doubles with every further retry.
	DefaultRetryBackoff = 2 * time.Second
	// DefaultMaxRetries is applied to messages that do not set their own
	// allowance.
	DefaultMaxRetries = 3
	// DefaultJournalTTL bounds how long an in-flight envelope stays in the
	// delivery journal.
	DefaultJournalTTL = 5 * time.Minute

	// maxRetryBackoff caps the exponential redelivery delay.
	maxRetryBackoff = 5 * time.Minute
	// actorTopicPrefix scopes transport subjects carrying actor traffic.
	actorTopicPrefix = "actors."
	// journalKeyPrefix scopes delivery journal entries.
	journalKeyPrefix = "inflight:"
)

// queued pairs a message with its submission sequence so equal priorities
// dequeue in FIFO order.
type queued struct {
	message Message
	seq     uint64
}

// messageHeap implements the standard heap.Interface over queued messages,
// higher priority first.
type messageHeap struct {
	items []queued
}

// enforce compilation error
var _ hp.Interface = (*messageHeap)(nil)

func (h *messageHeap) Len() int {
	return len(h.items)
}

func (h *messageHeap) Less(i, j int) bool {
	if h.items[i].message.Priority != h.items[j].message.Priority {
		return h.items[i].message.Priority > h.items[j].message.Priority
	}
	return h.items[i].seq < h.items[j].seq
}

func (h *messageHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *messageHeap) Push(x any) {
	h.items = append(h.items, x.(queued))
}

// Pop is called after the first element is swapped with the last
// so return the last element and resize the slice
func (h *messageHeap) Pop() any {
	last := len(h.items) - 1
	element := h.items[last]
	h.items = h.items[:last]
	return element
}

// inflightEntry tracks one message between dispatch and acknowledgement.
type inflightEntry struct {
	message Message
	// deadline is when the retry sweep may act on the entry.
	deadline time.Time
	// delivered is false while the message still needs a delivery attempt
	// (rejected inbox, transport error) and true once a copy reached the
	// recipient and the router is waiting for the acknowledgement.
	delivered bool
	// local is true when the recipient is resident in this runtime.
	local bool
}

// routerConfig carries the collaborators and tunables a Router is built with.
// Zero tunables fall back to the package defaults.
type routerConfig struct {
	logger       log.Logger
	clock        func() time.Time
	stream       eventstream.Stream
	bank         *breaker.Bank
	registry     *Registry
	transport    transport.Transport
	journal      transport.Journal
	metrics      *metric.RuntimeMetric
	ackTimeout   time.Duration
	retryBackoff time.Duration
	journalTTL   time.Duration
	maxRetries   int
}

// Router moves messages between actors. Submissions pass the recipient's
// circuit breaker, wait in a priority queue and are dispatched to the local
// inbox or published on the transport. Deliveries stay tracked until
// acknowledged; the periodic sweep retries them with exponential backoff and
// publishes exactly one DeliveryFailed event when the allowance runs out.
type Router struct {
	logger       log.Logger
	clock        func() time.Time
	stream       eventstream.Stream
	bank         *breaker.Bank
	registry     *Registry
	transport    transport.Transport
	journal      transport.Journal
	metrics      *metric.RuntimeMetric
	ackTimeout   time.Duration
	retryBackoff time.Duration
	journalTTL   time.Duration
	maxRetries   int

	mu       sync.Mutex
	heap     *messageHeap
	seq      uint64
	inflight map[string]*inflightEntry

	deadletters *atomic.Uint64
}

func newRouter(cfg routerConfig) *Router {
	if cfg.ackTimeout <= 0 {
		cfg.ackTimeout = DefaultAckTimeout
	}
	if cfg.retryBackoff <= 0 {
		cfg.retryBackoff = DefaultRetryBackoff
	}
	if cfg.journalTTL <= 0 {
		cfg.journalTTL = DefaultJournalTTL
	}
	if cfg.maxRetries <= 0 {
		cfg.maxRetries = DefaultMaxRetries
	}
	return &Router{
		logger:       cfg.logger,
		clock:        cfg.clock,
		stream:       cfg.stream,
		bank:         cfg.bank,
		registry:     cfg.registry,
		transport:    cfg.transport,
		journal:      cfg.journal,
		metrics:      cfg.metrics,
		ackTimeout:   cfg.ackTimeout,
		retryBackoff: cfg.retryBackoff,
		journalTTL:   cfg.journalTTL,
		maxRetries:   cfg.maxRetries,
		heap:         &messageHeap{items: make([]queued, 0)},
		inflight:     make(map[string]*inflightEntry),
		deadletters:  atomic.NewUint64(0),
	}
}

// Submit validates a message and parks it in the priority queue. The
// recipient's circuit breaker is consulted first: submissions against an open
// breaker are rejected with an OpenError and are never counted as delivery
// failures. The returned identifier is the message ID, generated when the
// caller left it empty.
func (r *Router) Submit(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("message recipient is required: %w", errors.ErrInvalidMessage)
	}

	now := r.clock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	if msg.Priority < PriorityLow || msg.Priority > PriorityCritical {
		msg.Priority = PriorityNormal
	}
	if msg.MaxRetries <= 0 {
		msg.MaxRetries = r.maxRetries
	}

	if msg.Expired(now) {
		return "", fmt.Errorf("message=(%s) %w", msg.ID, errors.ErrMessageExpired)
	}
	if r.bank.IsOpen(msg.To) {
		return "", breaker.NewOpenError(msg.To, r.bank.Remaining(msg.To))
	}

	if actor, err := r.registry.Actor(msg.To); err == nil {
		if status := actor.Status(); status.Terminal() || status == Stopping {
			return "", fmt.Errorf("actor=(%s) status=(%s) %w", msg.To, status, errors.ErrDead)
		}
	} else if r.transport == nil {
		return "", errors.NewErrActorNotFound(msg.To)
	}

	r.mu.Lock()
	r.seq++
	hp.Push(r.heap, queued{message: msg, seq: r.seq})
	r.mu.Unlock()

	r.journalSet(ctx, msg)
	if r.metrics != nil {
		r.metrics.MessagesRouted().Add(ctx, 1)
	}
	return msg.ID, nil
}

// Dispatch drains the priority queue, highest priority first, and returns the
// number of messages taken off it.
func (r *Router) Dispatch(ctx context.Context) int {
	dispatched := 0
	for {
		r.mu.Lock()
		if r.heap.Len() == 0 {
			r.mu.Unlock()
			return dispatched
		}
		item := hp.Pop(r.heap).(queued)
		r.mu.Unlock()

		r.deliver(ctx, item.message)
		dispatched++
	}
}

// deliver routes one message to its recipient.
func (r *Router) deliver(ctx context.Context, msg Message) {
	if msg.Expired(r.clock()) {
		r.fail(ctx, msg, "expired")
		return
	}

	actor, err := r.registry.Actor(msg.To)
	if err != nil {
		r.deliverRemote(ctx, msg)
		return
	}
	r.deliverLocal(ctx, msg, actor)
}

// deliverLocal hands a message to a resident actor. Heartbeats never enter
// the inbox: a deliverable actor with spare capacity is considered to have
// answered the probe, anything else silently misses its touch.
func (r *Router) deliverLocal(ctx context.Context, msg Message, actor *Actor) {
	now := r.clock()

	if msg.Kind == HeartbeatKind {
		inbox := actor.Inbox()
		if actor.Status().Deliverable() && inbox.Len() < inbox.Capacity() {
			actor.touch(now)
		}
		return
	}

	status := actor.Status()
	if status.Terminal() || status == Stopping {
		r.fail(ctx, msg, "recipient dead")
		return
	}
	if !status.Deliverable() {
		r.retryLater(ctx, msg, true, "recipient unreachable")
		return
	}

	if err := actor.Inbox().Enqueue(msg); err != nil {
		r.retryLater(ctx, msg, true, "inbox full")
		return
	}

	r.registry.markBusy(actor)
	r.track(msg, true)
}

// deliverRemote publishes a message for a non-resident actor on the
// transport.
func (r *Router) deliverRemote(ctx context.Context, msg Message) {
	if r.transport == nil {
		r.fail(ctx, msg, "no transport")
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		r.fail(ctx, msg, "payload not serializable")
		return
	}
	if err := r.transport.Publish(ctx, actorTopicPrefix+msg.To, payload); err != nil {
		r.retryLater(ctx, msg, false, "transport error")
		return
	}
	r.track(msg, false)
}

// track registers a delivered message as awaiting acknowledgement.
func (r *Router) track(msg Message, local bool) {
	entry := &inflightEntry{
		message:   msg,
		deadline:  r.clock().Add(r.ackTimeout + r.backoff(msg.RetryCount)),
		delivered: true,
		local:     local,
	}
	r.mu.Lock()
	r.inflight[msg.ID] = entry
	r.mu.Unlock()
}

// retryLater burns one retry for a failed delivery attempt and parks the
// message for redelivery after the backoff. The allowance running out turns
// the attempt into a terminal failure.
func (r *Router) retryLater(ctx context.Context, msg Message, local bool, reason string) {
	msg.RetryCount++
	if msg.RetryCount > msg.MaxRetries {
		r.fail(ctx, msg, reason)
		return
	}

	entry := &inflightEntry{
		message:   msg,
		deadline:  r.clock().Add(r.backoff(msg.RetryCount)),
		delivered: false,
		local:     local,
	}
	r.mu.Lock()
	r.inflight[msg.ID] = entry
	r.mu.Unlock()
	r.logger.Debugf("message=(%s) to actor=(%s) retry=(%d/%d) parked: %s", msg.ID, msg.To, msg.RetryCount, msg.MaxRetries, reason)
}

// Ack confirms that the recipient consumed a message. The matching in-flight
// entry is dropped, the journal entry removed and the recipient's breaker
// credited with a success. A Busy recipient with a drained inbox settles back
// to Active.
func (r *Router) Ack(ctx context.Context, messageID string) error {
	r.mu.Lock()
	entry, ok := r.inflight[messageID]
	if ok {
		delete(r.inflight, messageID)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("message=(%s) %w", messageID, errors.ErrJournalMiss)
	}

	r.journalDelete(ctx, messageID)
	r.bank.RecordSuccess(entry.message.To)

	if entry.local {
		if actor, err := r.registry.Actor(entry.message.To); err == nil && actor.Inbox().IsEmpty() {
			r.registry.settle(actor)
		}
	}
	return nil
}

// Sweep is the periodic delivery maintenance pass: it flushes the queue,
// retries due in-flight entries and finishes the drain of Stopping actors
// with no traffic left. Wired into the scheduler as the router.retry-sweep
// task.
func (r *Router) Sweep(ctx context.Context) error {
	r.Dispatch(ctx)

	now := r.clock()
	r.mu.Lock()
	due := make([]*inflightEntry, 0)
	for id, entry := range r.inflight {
		if !entry.deadline.After(now) {
			delete(r.inflight, id)
			due = append(due, entry)
		}
	}
	r.mu.Unlock()

	for _, entry := range due {
		msg := entry.message
		if msg.Expired(now) {
			r.fail(ctx, msg, "expired")
			continue
		}

		if !entry.delivered {
			// the parked attempt already consumed its retry, re-deliver now
			r.deliver(ctx, msg)
			continue
		}

		msg.RetryCount++
		if msg.RetryCount > msg.MaxRetries {
			r.fail(ctx, msg, "retries exhausted")
			continue
		}

		if entry.local {
			// the copy already sits in the recipient's inbox, wait longer
			entry.message = msg
			entry.deadline = now.Add(r.ackTimeout + r.backoff(msg.RetryCount))
			r.mu.Lock()
			r.inflight[msg.ID] = entry
			r.mu.Unlock()
			continue
		}
		r.deliverRemote(ctx, msg)
	}

	r.completeDrains(ctx)
	return nil
}

// completeDrains finishes Stopping actors once no in-flight traffic targets
// them anymore.
func (r *Router) completeDrains(ctx context.Context) {
	for _, actor := range r.registry.Actors() {
		if actor.Status() != Stopping {
			continue
		}
		if r.hasInflightFor(actor.ID()) {
			continue
		}
		if err := r.registry.CompleteStop(actor.ID()); err != nil {
			r.logger.Warnf("failed to complete stop of actor=(%s): %v", actor.ID(), err)
		}
	}
}

func (r *Router) hasInflightFor(actorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.inflight {
		if entry.message.To == actorID {
			return true
		}
	}
	for _, item := range r.heap.items {
		if item.message.To == actorID {
			return true
		}
	}
	return false
}

// CancelFor drops all queued and in-flight messages targeting an actor and
// returns how many were removed. Cancellation is silent: no DeliveryFailed
// events are published and no breaker failures recorded.
func (r *Router) CancelFor(ctx context.Context, actorID string) int {
	removed := make([]string, 0)

	r.mu.Lock()
	for id, entry := range r.inflight {
		if entry.message.To == actorID {
			delete(r.inflight, id)
			removed = append(removed, id)
		}
	}
	kept := r.heap.items[:0]
	for _, item := range r.heap.items {
		if item.message.To == actorID {
			removed = append(removed, item.message.ID)
			continue
		}
		kept = append(kept, item)
	}
	r.heap.items = kept
	hp.Init(r.heap)
	r.mu.Unlock()

	for _, id := range removed {
		r.journalDelete(ctx, id)
	}
	if len(removed) > 0 {
		r.logger.Debugf("cancelled %d message(s) targeting actor=(%s)", len(removed), actorID)
	}
	return len(removed)
}

// DropAll clears every queued and in-flight message without events or
// breaker bookkeeping. Used when a shutdown grace period runs out.
func (r *Router) DropAll(ctx context.Context) int {
	r.mu.Lock()
	dropped := make([]string, 0, len(r.inflight)+len(r.heap.items))
	for id := range r.inflight {
		dropped = append(dropped, id)
	}
	r.inflight = make(map[string]*inflightEntry)
	for _, item := range r.heap.items {
		dropped = append(dropped, item.message.ID)
	}
	r.heap.items = r.heap.items[:0]
	r.mu.Unlock()

	for _, id := range dropped {
		r.journalDelete(ctx, id)
	}
	return len(dropped)
}

// fail retires a message for good: journal entry removed, breaker debited,
// dead letter counted and exactly one DeliveryFailed event published.
func (r *Router) fail(ctx context.Context, msg Message, reason string) {
	r.journalDelete(ctx, msg.ID)
	r.deadletters.Inc()
	r.bank.RecordFailure(msg.To)
	if r.metrics != nil {
		r.metrics.DeliveriesFailed().Add(ctx, 1)
	}
	if r.stream != nil {
		r.stream.Publish(events.DeliveryFailed{
			MessageID:   msg.ID,
			SenderID:    msg.From,
			RecipientID: msg.To,
			Attempts:    msg.RetryCount,
			Reason:      reason,
			At:          r.clock(),
		})
	}
	r.logger.Warnf("message=(%s) to actor=(%s) failed after %d retries: %s", msg.ID, msg.To, msg.RetryCount, reason)
}

// backoff returns the exponential redelivery delay for the given retry.
func (r *Router) backoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	delay := r.retryBackoff
	for i := 1; i < retryCount; i++ {
		delay *= 2
		if delay >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return delay
}

// PendingLen returns the number of messages waiting in the priority queue.
func (r *Router) PendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.Len()
}

// InflightLen returns the number of messages awaiting acknowledgement or
// redelivery.
func (r *Router) InflightLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// Deadletters returns how many messages failed for good since the router
// started.
func (r *Router) Deadletters() uint64 {
	return r.deadletters.Load()
}

func (r *Router) journalSet(ctx context.Context, msg Message) {
	if r.journal == nil || msg.Kind == HeartbeatKind {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Warnf("failed to journal message=(%s): %v", msg.ID, err)
		return
	}
	if err := r.journal.Set(ctx, journalKeyPrefix+msg.ID, payload, r.journalTTL); err != nil {
		r.logger.Warnf("failed to journal message=(%s): %v", msg.ID, err)
	}
}

func (r *Router) journalDelete(ctx context.Context, messageID string) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Delete(ctx, journalKeyPrefix+messageID); err != nil {
		r.logger.Warnf("failed to drop journal entry for message=(%s): %v", messageID, err)
	}
}
