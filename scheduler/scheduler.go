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

// Package scheduler wraps quartz into a named-task scheduler for the
// runtime's periodic work: retry sweeps, heartbeat probes and anything else
// registered against it. Every task is single-flight: a tick that lands
// while the previous run is still going is skipped, never stacked.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/internal/syncmap"
	"github.com/seanchatmangpt/citty-sub010/log"
)

// DefaultStopTimeout bounds how long Stop waits for running tasks.
const DefaultStopTimeout = 3 * time.Second

// Task is a unit of scheduled work. The context it receives is the
// scheduler's run context; long tasks should honor its cancellation.
type Task func(ctx context.Context) error

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStopTimeout bounds the shutdown drain.
func WithStopTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.stopTimeout = timeout
		}
	}
}

// taskEntry tracks one named task and its single-flight guard.
type taskEntry struct {
	name     string
	jobKey   *quartz.JobKey
	inflight *atomic.Bool
	task     Task
}

// Scheduler runs named tasks on intervals or once after a delay. Tasks can
// be triggered by hand, which tests use to drive periodic work
// deterministically instead of waiting out real timers.
type Scheduler struct {
	mu              sync.Mutex
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	logger          log.Logger
	stopTimeout     time.Duration
	tasks           *syncmap.SyncMap[string, *taskEntry]
}

// New creates a Scheduler. It must be started before tasks can be
// registered.
func New(opts ...Option) *Scheduler {
	quartzScheduler, _ := quartz.NewStdScheduler(
		quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))

	s := &Scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          log.DiscardLogger,
		stopTimeout:     DefaultStopTimeout,
		tasks:           syncmap.New[string, *taskEntry](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the underlying scheduler. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return
	}
	s.logger.Info("starting tasks scheduler...")
	s.quartzScheduler.Start(ctx)
	s.started.Store(s.quartzScheduler.IsStarted())
	s.logger.Info("tasks scheduler started")
}

// Stop clears every scheduled task and waits for running ones up to the
// stop timeout.
func (s *Scheduler) Stop(ctx context.Context) {
	if !s.started.Load() {
		return
	}
	s.logger.Info("stopping tasks scheduler...")
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.quartzScheduler.Clear()
	s.quartzScheduler.Stop()
	s.started.Store(s.quartzScheduler.IsStarted())
	s.tasks.Reset()

	ctx, cancel := context.WithTimeout(ctx, s.stopTimeout)
	defer cancel()
	s.quartzScheduler.Wait(ctx)
	s.logger.Info("tasks scheduler stopped")
}

// Started reports whether the scheduler is running.
func (s *Scheduler) Started() bool {
	return s.started.Load()
}

// Every registers a periodic task under the given name. Registering a name
// again replaces its previous schedule.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return errors.ErrSchedulerNotStarted
	}
	if interval <= 0 {
		return errors.ErrInvalidTimeout
	}
	entry, err := s.registerLocked(name, task)
	if err != nil {
		return err
	}
	detail := quartz.NewJobDetail(s.newJob(entry), entry.jobKey)
	return s.quartzScheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(interval))
}

// Once registers a task that fires a single time after the given delay.
func (s *Scheduler) Once(name string, delay time.Duration, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return errors.ErrSchedulerNotStarted
	}
	if delay < 0 {
		return errors.ErrInvalidTimeout
	}
	entry, err := s.registerLocked(name, task)
	if err != nil {
		return err
	}
	detail := quartz.NewJobDetail(s.newJob(entry), entry.jobKey)
	return s.quartzScheduler.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay))
}

// Cancel removes a scheduled task.
func (s *Scheduler) Cancel(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return errors.ErrSchedulerNotStarted
	}
	entry, ok := s.tasks.Get(name)
	if !ok {
		return errors.NewErrTaskNotFound(name)
	}
	s.tasks.Delete(name)
	if err := s.quartzScheduler.DeleteJob(entry.jobKey); err != nil {
		s.logger.Warnf("failed to delete job for task=(%s): %v", name, err)
	}
	return nil
}

// Trigger runs a registered task immediately, subject to the same
// single-flight guard as its scheduled runs.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	if !s.started.Load() {
		return errors.ErrSchedulerNotStarted
	}
	entry, ok := s.tasks.Get(name)
	if !ok {
		return errors.NewErrTaskNotFound(name)
	}
	return s.runTask(ctx, entry)
}

// Tasks returns the names of every registered task.
func (s *Scheduler) Tasks() []string {
	return s.tasks.Keys()
}

// registerLocked creates the task entry, displacing any previous schedule
// under the same name.
func (s *Scheduler) registerLocked(name string, task Task) (*taskEntry, error) {
	if name == "" || task == nil {
		return nil, errors.ErrTaskNotFound
	}
	if previous, ok := s.tasks.Get(name); ok {
		if err := s.quartzScheduler.DeleteJob(previous.jobKey); err != nil {
			s.logger.Warnf("failed to displace job for task=(%s): %v", name, err)
		}
	}
	entry := &taskEntry{
		name:     name,
		jobKey:   quartz.NewJobKey(name),
		inflight: atomic.NewBool(false),
		task:     task,
	}
	s.tasks.Set(name, entry)
	return entry, nil
}

func (s *Scheduler) newJob(entry *taskEntry) quartz.Job {
	return job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		if err := s.runTask(ctx, entry); err != nil {
			return false, err
		}
		return true, nil
	})
}

// runTask executes the task unless a previous run is still in flight.
func (s *Scheduler) runTask(ctx context.Context, entry *taskEntry) error {
	if !entry.inflight.CompareAndSwap(false, true) {
		s.logger.Debugf("task=(%s) still running, skipping tick", entry.name)
		return nil
	}
	defer entry.inflight.Store(false)
	if err := entry.task(ctx); err != nil {
		s.logger.Errorf("task=(%s) failed: %v", entry.name, err)
		return err
	}
	return nil
}
