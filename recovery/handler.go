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

package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seanchatmangpt/citty-sub010/breaker"
	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/internal/syncmap"
	"github.com/seanchatmangpt/citty-sub010/log"
)

// Handler classifies, records, recovers and escalates errors. Recovery runs
// asynchronously per record: each attempt waits a growing backoff, then
// invokes the pluggable fallback action bound to the category's strategy.
// Escalation is terminal and happens at most once per record.
type Handler struct {
	logger   log.Logger
	clock    func() time.Time
	stream   eventstream.Stream
	bank     *breaker.Bank
	stats    *Statistics
	notifier Notifier

	strategies map[Category]Strategy
	actions    *syncmap.SyncMap[string, Action]
	records    *syncmap.SyncMap[string, *entry]

	stopSignal chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a Handler. Without options it owns a private circuit breaker
// bank and statistics instance; share them through WithBank/WithStatistics
// when the rest of the runtime needs the same view.
func New(opts ...Option) *Handler {
	h := &Handler{
		logger:     log.DiscardLogger,
		clock:      time.Now,
		strategies: DefaultStrategies(),
		actions:    syncmap.New[string, Action](),
		records:    syncmap.New[string, *entry](),
		stopSignal: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.bank == nil {
		h.bank = breaker.NewBank(breaker.WithClock(h.clock))
	}
	if h.stats == nil {
		h.stats = NewStatistics(WithStatisticsClock(h.clock))
	}
	return h
}

// RegisterAction binds a fallback action to a strategy tag. Registering the
// same tag twice replaces the previous action.
func (h *Handler) RegisterAction(tag string, action Action) {
	if tag == "" || action == nil {
		return
	}
	h.actions.Set(tag, action)
}

// HandleError records an error and starts its recovery. The returned Record
// is a snapshot taken after admission; follow its progress through Record
// and the event stream. A nil cause records nothing.
func (h *Handler) HandleError(ctx context.Context, cause error, category Category, severity Severity, errCtx Context) (*Record, error) {
	if cause == nil {
		return nil, nil
	}

	record := Record{
		ID:        uuid.NewString(),
		Category:  category,
		Severity:  severity,
		Message:   cause.Error(),
		Context:   errCtx,
		Timestamp: h.clock(),
	}

	h.stats.Record(category, severity)
	h.bank.RecordFailure(string(category))

	switch severity {
	case SeverityLow:
		h.logger.Warnf("error recorded id=(%s) category=(%s) severity=(%s): %v", record.ID, category, severity, cause)
	default:
		h.logger.Errorf("error recorded id=(%s) category=(%s) severity=(%s): %v", record.ID, category, severity, cause)
	}

	e := newEntry(record, h.strategyFor(category))
	h.records.Set(record.ID, e)

	if h.ShouldEscalate(record) {
		h.escalate(ctx, e)
		snapshot := e.snapshot()
		return &snapshot, nil
	}

	h.wg.Add(1)
	go h.runRecovery(e)

	snapshot := e.snapshot()
	return &snapshot, nil
}

// RecordSuccess reports a healthy operation for the category, closing its
// breaker. It is independent of any error record.
func (h *Handler) RecordSuccess(category Category) {
	h.bank.RecordSuccess(string(category))
}

// Resolve marks a record resolved from the outside, cancelling any pending
// backoff wait. Resolving an already resolved record is a no-op.
func (h *Handler) Resolve(recordID string) error {
	e, ok := h.records.Get(recordID)
	if !ok {
		return errors.ErrRecoveryNotFound
	}

	e.mu.Lock()
	if e.record.Resolved {
		e.mu.Unlock()
		return nil
	}
	e.record.Resolved = true
	record := e.record
	e.finishLocked()
	e.mu.Unlock()

	h.logger.Infof("error id=(%s) category=(%s) resolved externally", record.ID, record.Category)
	h.publish(events.ErrorResolved{
		ErrorID:  record.ID,
		ActorID:  record.Context.ActorID,
		Category: string(record.Category),
		At:       h.clock(),
	})
	return nil
}

// ShouldEscalate reports whether the record crossed an escalation boundary:
// critical severity, attempt count at the strategy threshold, or a windowed
// same-category error count above it.
func (h *Handler) ShouldEscalate(record Record) bool {
	strategy := h.strategyFor(record.Category)
	if record.Severity == SeverityCritical {
		return true
	}
	if record.RecoveryAttempts >= strategy.EscalationThreshold {
		return true
	}
	return h.stats.WindowedCount(record.Category) > strategy.EscalationThreshold
}

// Record returns a snapshot of a tracked record.
func (h *Handler) Record(recordID string) (Record, bool) {
	e, ok := h.records.Get(recordID)
	if !ok {
		return Record{}, false
	}
	return e.snapshot(), true
}

// Unresolved returns snapshots of every record not yet resolved.
func (h *Handler) Unresolved() []Record {
	var out []Record
	h.records.Range(func(_ string, e *entry) {
		if snapshot := e.snapshot(); !snapshot.Resolved {
			out = append(out, snapshot)
		}
	})
	return out
}

// Len returns how many records the handler tracks.
func (h *Handler) Len() int {
	return h.records.Len()
}

// Statistics exposes the handler's error counters.
func (h *Handler) Statistics() *Statistics {
	return h.stats
}

// Bank exposes the circuit breaker bank the handler records into.
func (h *Handler) Bank() *breaker.Bank {
	return h.bank
}

// Stop interrupts pending backoff waits and blocks until in-flight recovery
// goroutines exit or the context expires.
func (h *Handler) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() {
		close(h.stopSignal)
	})
	drained := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) strategyFor(category Category) Strategy {
	if strategy, ok := h.strategies[category]; ok {
		return strategy
	}
	return DefaultStrategy()
}

// runRecovery drives the attempt loop of one record until it resolves,
// escalates, exhausts its retries, or the handler stops.
func (h *Handler) runRecovery(e *entry) {
	defer h.wg.Done()
	for {
		e.mu.Lock()
		if e.record.Resolved || e.record.Escalated {
			e.mu.Unlock()
			return
		}
		if e.record.RecoveryAttempts >= e.strategy.MaxRetries {
			record := e.record
			e.finishLocked()
			e.mu.Unlock()
			h.logger.Warnf("recovery exhausted for error id=(%s) category=(%s) after %d attempt(s)",
				record.ID, record.Category, record.RecoveryAttempts)
			h.publish(events.RecoveryExhausted{
				ErrorID:  record.ID,
				ActorID:  record.Context.ActorID,
				Category: string(record.Category),
				Attempts: record.RecoveryAttempts,
				At:       h.clock(),
			})
			return
		}
		e.record.RecoveryAttempts++
		attempt := e.record.RecoveryAttempts
		e.mu.Unlock()

		timer := time.NewTimer(e.strategy.BaseBackoff * time.Duration(attempt))
		select {
		case <-e.done:
			timer.Stop()
			return
		case <-h.stopSignal:
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := h.invokeAction(e, attempt); err == nil {
			e.mu.Lock()
			if e.record.Resolved {
				e.mu.Unlock()
				return
			}
			e.record.Resolved = true
			record := e.record
			e.finishLocked()
			e.mu.Unlock()
			h.logger.Infof("error id=(%s) category=(%s) recovered on attempt %d", record.ID, record.Category, attempt)
			h.publish(events.ErrorResolved{
				ErrorID:  record.ID,
				ActorID:  record.Context.ActorID,
				Category: string(record.Category),
				At:       h.clock(),
			})
			return
		}

		if snapshot := e.snapshot(); h.ShouldEscalate(snapshot) {
			h.escalate(context.Background(), e)
			return
		}
	}
}

// invokeAction runs the strategy's fallback action bounded by the strategy
// timeout. A missing action counts as a failed attempt: tags carry no
// built-in behavior.
func (h *Handler) invokeAction(e *entry, attempt int) error {
	snapshot := e.snapshot()
	action, ok := h.actions.Get(e.strategy.FallbackAction)
	if !ok {
		h.logger.Debugf("no action registered for tag=(%s), attempt %d on error id=(%s) failed",
			e.strategy.FallbackAction, attempt, snapshot.ID)
		return errors.NewErrFallbackNotRegistered(e.strategy.FallbackAction)
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.strategy.Timeout)
	defer cancel()
	return action(ctx, snapshot)
}

// escalate marks the record escalated and emits the notification exactly
// once; later calls are no-ops.
func (h *Handler) escalate(ctx context.Context, e *entry) {
	e.mu.Lock()
	if e.record.Escalated {
		e.mu.Unlock()
		return
	}
	e.record.Escalated = true
	record := e.record
	e.finishLocked()
	e.mu.Unlock()

	h.logger.Errorf("escalating error id=(%s) category=(%s) severity=(%s) after %d attempt(s)",
		record.ID, record.Category, record.Severity, record.RecoveryAttempts)
	h.publish(events.ErrorEscalated{
		ErrorID:  record.ID,
		ActorID:  record.Context.ActorID,
		Category: string(record.Category),
		Severity: record.Severity.String(),
		Message:  record.Message,
		Attempts: record.RecoveryAttempts,
		At:       h.clock(),
	})
	if h.notifier != nil {
		if err := h.notifier.Notify(ctx, record); err != nil {
			h.logger.Errorf("failed to notify escalation of error id=(%s): %v", record.ID, err)
		}
	}
}

func (h *Handler) publish(event events.Event) {
	if h.stream != nil {
		h.stream.Publish(event)
	}
}
