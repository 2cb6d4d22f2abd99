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
	"regexp"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/seanchatmangpt/citty-sub010/breaker"
	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/internal/pause"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/metric"
	"github.com/seanchatmangpt/citty-sub010/recovery"
	"github.com/seanchatmangpt/citty-sub010/scheduler"
	"github.com/seanchatmangpt/citty-sub010/sidecar"
	"github.com/seanchatmangpt/citty-sub010/supervision"
	"github.com/seanchatmangpt/citty-sub010/telemetry"
	"github.com/seanchatmangpt/citty-sub010/transport"
)

const (
	// DefaultShutdownGrace bounds how long Stop waits for in-flight traffic.
	DefaultShutdownGrace = 30 * time.Second
	// DefaultSweepInterval is how often the router retry sweep runs.
	DefaultSweepInterval = 5 * time.Second

	// SweepTaskName is the scheduler task running the router retry sweep.
	SweepTaskName = "router.retry-sweep"
	// ProbeTaskName is the scheduler task running the health probe.
	ProbeTaskName = "health.probe"
)

// systemNamePattern validates actor system names: word characters with
// non-leading dashes and underscores.
var systemNamePattern = regexp.MustCompile("^[a-zA-Z0-9][a-zA-Z0-9-_]*$")

// System is the fault tolerance runtime: one registry of supervised actors,
// one message router, one health monitor and one error recovery handler,
// sharing a clock, a logger, an event stream and a circuit breaker bank.
type System struct {
	name   string
	logger log.Logger
	clock  func() time.Time

	telemetry    *telemetry.Telemetry
	metrics      *metric.RuntimeMetric
	registration otelmetric.Registration

	stream    eventstream.Stream
	bank      *breaker.Bank
	stats     *recovery.Statistics
	recovery  *recovery.Handler
	tree      *supervision.Tree
	registry  *Registry
	router    *Router
	health    *HealthMonitor
	scheduler *scheduler.Scheduler

	transport transport.Transport
	journal   transport.Journal
	notifier  recovery.Notifier
	bridge    *sidecar.Bridge

	breakerOpts  []breaker.Option
	recoveryOpts []recovery.Option
	rootConfig   *supervision.Config

	shutdownGrace     time.Duration
	heartbeatInterval time.Duration
	ackTimeout        time.Duration
	retryBackoff      time.Duration
	sweepInterval     time.Duration
	journalTTL        time.Duration
	maxRetries        int

	started *atomic.Bool
}

// escalationCounter sits between the recovery handler and the operator's
// notifier so every escalation bumps the counter exactly once.
type escalationCounter struct {
	metrics *metric.RuntimeMetric
	inner   recovery.Notifier
}

// enforce compilation error
var _ recovery.Notifier = (*escalationCounter)(nil)

func (n *escalationCounter) Notify(ctx context.Context, record recovery.Record) error {
	n.metrics.Escalations().Add(ctx, 1)
	if n.inner == nil {
		return nil
	}
	return n.inner.Notify(ctx, record)
}

// NewSystem builds an actor system. The name must start with a word
// character and contain only word characters, dashes and underscores.
func NewSystem(name string, opts ...Option) (*System, error) {
	if !systemNamePattern.MatchString(name) {
		return nil, errors.ErrInvalidSystemName
	}

	system := &System{
		name:              name,
		logger:            log.DiscardLogger,
		clock:             time.Now,
		shutdownGrace:     DefaultShutdownGrace,
		heartbeatInterval: DefaultHeartbeatInterval,
		ackTimeout:        DefaultAckTimeout,
		retryBackoff:      DefaultRetryBackoff,
		sweepInterval:     DefaultSweepInterval,
		journalTTL:        DefaultJournalTTL,
		maxRetries:        DefaultMaxRetries,
		started:           atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(system)
	}

	if system.telemetry == nil {
		system.telemetry = telemetry.New()
	}
	metrics, err := metric.NewRuntimeMetric(system.telemetry.Meter())
	if err != nil {
		return nil, err
	}
	system.metrics = metrics

	system.stream = eventstream.New()

	bankOpts := append([]breaker.Option{
		breaker.WithClock(system.clock),
		breaker.WithStateChangeHook(func(key string, _, to breaker.State) {
			if to == breaker.Open {
				system.metrics.BreakerOpens().Add(context.Background(), 1)
				system.logger.Warnf("circuit breaker for actor=(%s) opened", key)
			}
		}),
	}, system.breakerOpts...)
	system.bank = breaker.NewBank(bankOpts...)

	system.stats = recovery.NewStatistics(recovery.WithStatisticsClock(system.clock))
	recoveryOpts := append([]recovery.Option{
		recovery.WithLogger(system.logger),
		recovery.WithClock(system.clock),
		recovery.WithStream(system.stream),
		recovery.WithBank(system.bank),
		recovery.WithStatistics(system.stats),
		recovery.WithNotifier(&escalationCounter{metrics: system.metrics, inner: system.notifier}),
	}, system.recoveryOpts...)
	system.recovery = recovery.New(recoveryOpts...)

	treeOpts := []supervision.Option{
		supervision.WithLogger(system.logger),
		supervision.WithClock(system.clock),
		supervision.WithStream(system.stream),
	}
	if system.rootConfig != nil {
		treeOpts = append(treeOpts, supervision.WithRootConfig(*system.rootConfig))
	}
	system.tree = supervision.NewTree(treeOpts...)

	system.registry = newRegistry(system.logger, system.clock, system.stream, system.tree)
	system.router = newRouter(routerConfig{
		logger:       system.logger,
		clock:        system.clock,
		stream:       system.stream,
		bank:         system.bank,
		registry:     system.registry,
		transport:    system.transport,
		journal:      system.journal,
		metrics:      system.metrics,
		ackTimeout:   system.ackTimeout,
		retryBackoff: system.retryBackoff,
		journalTTL:   system.journalTTL,
		maxRetries:   system.maxRetries,
	})
	system.health = newHealthMonitor(
		system.logger,
		system.clock,
		system.stream,
		system.registry,
		system.router,
		system.tree,
		system.heartbeatInterval,
	)
	system.scheduler = scheduler.New(scheduler.WithLogger(system.logger))

	registration, err := system.telemetry.Meter().RegisterCallback(
		func(_ context.Context, observer otelmetric.Observer) error {
			observer.ObserveInt64(system.metrics.ActorsCount(), int64(system.registry.Len()))
			observer.ObserveFloat64(system.metrics.FaultToleranceScore(), system.health.Score())
			return nil
		},
		system.metrics.ActorsCount(),
		system.metrics.FaultToleranceScore(),
	)
	if err != nil {
		return nil, err
	}
	system.registration = registration

	return system, nil
}

// Start brings the runtime online and schedules the retry sweep and the
// health probe.
func (s *System) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.ErrSystemAlreadyStarted
	}

	s.scheduler.Start(ctx)
	if err := s.scheduler.Every(SweepTaskName, s.sweepInterval, s.router.Sweep); err != nil {
		s.started.Store(false)
		s.scheduler.Stop(ctx)
		return err
	}
	if err := s.scheduler.Every(ProbeTaskName, s.heartbeatInterval, s.health.Probe); err != nil {
		s.started.Store(false)
		s.scheduler.Stop(ctx)
		return err
	}

	s.logger.Infof("%s actor system started", s.name)
	return nil
}

// Stop winds the runtime down: periodic tasks halt, in-flight traffic gets
// the shutdown grace to drain, then recovery, transport and journal close and
// the event stream shuts every subscriber down.
func (s *System) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return errors.ErrSystemNotStarted
	}
	s.logger.Infof("%s actor system is shutting down", s.name)

	s.scheduler.Stop(ctx)
	err := s.drain(ctx)

	if err := s.registration.Unregister(); err != nil {
		s.logger.Warnf("failed to unregister metric callback: %v", err)
	}

	eg := errgroup.Group{}
	eg.Go(func() error { return s.recovery.Stop(ctx) })
	if s.transport != nil {
		eg.Go(s.transport.Close)
	}
	if s.journal != nil {
		eg.Go(s.journal.Close)
	}
	err = multierr.Append(err, eg.Wait())

	s.stream.Close()
	s.logger.Infof("%s actor system stopped", s.name)
	return err
}

// drain waits for the router to run out of in-flight traffic, up to the
// shutdown grace. Whatever remains afterwards is dropped.
func (s *System) drain(ctx context.Context) error {
	deadline := time.Now().Add(s.shutdownGrace)
	for {
		if s.router.InflightLen() == 0 && s.router.PendingLen() == 0 {
			return nil
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			dropped := s.router.DropAll(ctx)
			s.logger.Warnf("shutdown grace elapsed, dropped %d in-flight message(s)", dropped)
			return fmt.Errorf("dropped %d in-flight message(s): %w", dropped, errors.ErrShutdownTimeout)
		}
		pause.For(10 * time.Millisecond)
	}
}

// Name returns the system name.
func (s *System) Name() string {
	return s.name
}

// Started reports whether the runtime is online.
func (s *System) Started() bool {
	return s.started.Load()
}

// Spawn creates a supervised actor of the given kind.
func (s *System) Spawn(ctx context.Context, kind string, opts ...SpawnOption) (*Actor, error) {
	if !s.started.Load() {
		return nil, errors.ErrSystemNotStarted
	}
	return s.registry.Spawn(ctx, kind, opts...)
}

// Kill stops an actor: new sends are rejected, pending retries cancelled and
// the record retired once nothing targets it anymore.
func (s *System) Kill(ctx context.Context, id string) error {
	if !s.started.Load() {
		return errors.ErrSystemNotStarted
	}
	if err := s.registry.Shutdown(ctx, id); err != nil {
		return err
	}
	s.router.CancelFor(ctx, id)
	s.router.completeDrains(ctx)
	return nil
}

// Send routes a message and returns its identifier.
func (s *System) Send(ctx context.Context, msg Message) (string, error) {
	if !s.started.Load() {
		return "", errors.ErrSystemNotStarted
	}
	id, err := s.router.Submit(ctx, msg)
	if err != nil {
		return "", err
	}
	s.router.Dispatch(ctx)
	return id, nil
}

// Ack confirms that the recipient consumed a message.
func (s *System) Ack(ctx context.Context, messageID string) error {
	if !s.started.Load() {
		return errors.ErrSystemNotStarted
	}
	return s.router.Ack(ctx, messageID)
}

// Restart brings one actor back within its supervision budget. Operator
// restarts check the budget but do not consume it.
func (s *System) Restart(ctx context.Context, id string) error {
	if !s.started.Load() {
		return errors.ErrSystemNotStarted
	}
	return s.registry.Restart(ctx, id)
}

// Respawn is the operator override bringing a terminal actor back as a fresh
// record.
func (s *System) Respawn(ctx context.Context, id string) (*Actor, error) {
	if !s.started.Load() {
		return nil, errors.ErrSystemNotStarted
	}
	return s.registry.Respawn(ctx, id)
}

// Suspend flips an actor to Suspended after a network partition fault.
func (s *System) Suspend(id string) error {
	if !s.started.Load() {
		return errors.ErrSystemNotStarted
	}
	return s.registry.Suspend(id)
}

// ReportError hands a failure to the recovery pipeline and returns the
// tracked record.
func (s *System) ReportError(ctx context.Context, cause error, category recovery.Category, severity recovery.Severity, errCtx recovery.Context) (*recovery.Record, error) {
	if !s.started.Load() {
		return nil, errors.ErrSystemNotStarted
	}
	s.metrics.ErrorsRecorded().Add(ctx, 1)
	return s.recovery.HandleError(ctx, cause, category, severity, errCtx)
}

// RecordSuccess feeds a successful operation back into the breaker for the
// category.
func (s *System) RecordSuccess(category recovery.Category) {
	s.recovery.RecordSuccess(category)
}

// ResolveError marks an error record as resolved.
func (s *System) ResolveError(recordID string) error {
	return s.recovery.Resolve(recordID)
}

// RegisterRecoveryAction installs the recovery action for an action tag.
func (s *System) RegisterRecoveryAction(tag string, action recovery.Action) {
	s.recovery.RegisterAction(tag, action)
}

// RegisterKind stores the spawn defaults for an actor kind.
func (s *System) RegisterKind(spec KindSpec) error {
	return s.registry.RegisterKind(spec)
}

// Subscribe returns a subscriber attached to the given event topics.
func (s *System) Subscribe(topics ...string) eventstream.Subscriber {
	sub := s.stream.AddSubscriber()
	for _, topic := range topics {
		s.stream.Subscribe(sub, topic)
	}
	return sub
}

// Unsubscribe detaches a subscriber from every topic and shuts it down.
func (s *System) Unsubscribe(sub eventstream.Subscriber) {
	s.stream.RemoveSubscriber(sub)
}

// IssueCommand frames a command to the external worker over the sidecar
// bridge.
func (s *System) IssueCommand(command sidecar.Command) error {
	if s.bridge == nil {
		return errors.ErrRuntimeNotReady
	}
	return s.bridge.Issue(command)
}

// AwaitWorker blocks until the sidecar worker reports readiness.
func (s *System) AwaitWorker(ctx context.Context) error {
	if s.bridge == nil {
		return errors.ErrRuntimeNotReady
	}
	return s.bridge.WaitReady(ctx)
}

// Actor returns the record for an identifier.
func (s *System) Actor(id string) (*Actor, error) {
	return s.registry.Actor(id)
}

// Actors returns a snapshot of all resident records.
func (s *System) Actors() []*Actor {
	return s.registry.Actors()
}

// ActorsCount returns the number of resident records.
func (s *System) ActorsCount() int {
	return s.registry.Len()
}

// Score returns the current fault tolerance score.
func (s *System) Score() float64 {
	return s.health.Score()
}

// HealthState returns the current health classification.
func (s *System) HealthState() HealthState {
	return s.health.State()
}

// VerifyConsensus checks the two-thirds healthy quorum.
func (s *System) VerifyConsensus() error {
	return s.health.VerifyConsensus()
}

// Deadletters returns how many messages failed for good.
func (s *System) Deadletters() uint64 {
	return s.router.Deadletters()
}

// Logger returns the system logger.
func (s *System) Logger() log.Logger {
	return s.logger
}

// Statistics returns the error statistics tracker.
func (s *System) Statistics() *recovery.Statistics {
	return s.stats
}

// Bank returns the circuit breaker bank.
func (s *System) Bank() *breaker.Bank {
	return s.bank
}

// Tree returns the supervision tree.
func (s *System) Tree() *supervision.Tree {
	return s.tree
}

// Recovery returns the error recovery handler.
func (s *System) Recovery() *recovery.Handler {
	return s.recovery
}

// Registry returns the actor registry.
func (s *System) Registry() *Registry {
	return s.registry
}

// Router returns the message router.
func (s *System) Router() *Router {
	return s.router
}

// Health returns the health monitor.
func (s *System) Health() *HealthMonitor {
	return s.health
}

// Scheduler returns the periodic task scheduler.
func (s *System) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Telemetry returns the telemetry engine.
func (s *System) Telemetry() *telemetry.Telemetry {
	return s.telemetry
}
