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
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"github.com/google/uuid"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/internal/syncmap"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/supervision"
)

const (
	// restartAttempts bounds how often one restart request retries its
	// pre-start hook before the actor is declared crashed.
	restartAttempts = 3
	// restartRetryMin is the initial backoff between restart attempts.
	restartRetryMin = 100 * time.Millisecond
	// restartRetryMax caps the backoff between restart attempts.
	restartRetryMax = time.Second
)

// Registry owns the actor records of a system. It is the only component that
// creates, restarts and retires actors, and it keeps the supervision tree in
// lockstep with the record map.
type Registry struct {
	logger log.Logger
	clock  func() time.Time
	stream eventstream.Stream
	tree   *supervision.Tree

	actors *syncmap.SyncMap[string, *Actor]
	kinds  *syncmap.SyncMap[string, KindSpec]
}

func newRegistry(logger log.Logger, clock func() time.Time, stream eventstream.Stream, tree *supervision.Tree) *Registry {
	return &Registry{
		logger: logger,
		clock:  clock,
		stream: stream,
		tree:   tree,
		actors: syncmap.New[string, *Actor](),
		kinds:  syncmap.New[string, KindSpec](),
	}
}

// spawnConfig carries the per-spawn overrides applied on top of a KindSpec.
type spawnConfig struct {
	id           string
	name         string
	parentID     string
	capabilities []string
	limits       *ResourceLimits
	supervision  *supervision.Config
	autoRestart  *bool
}

// SpawnOption overrides a kind default for a single spawn.
type SpawnOption func(*spawnConfig)

// WithActorID fixes the actor identifier instead of generating one.
func WithActorID(id string) SpawnOption {
	return func(c *spawnConfig) { c.id = id }
}

// WithName sets the actor display name.
func WithName(name string) SpawnOption {
	return func(c *spawnConfig) { c.name = name }
}

// WithParent places the actor under the given supervisor instead of the root.
func WithParent(parentID string) SpawnOption {
	return func(c *spawnConfig) { c.parentID = parentID }
}

// WithCapabilities adds capabilities on top of the kind's defaults.
func WithCapabilities(capabilities ...string) SpawnOption {
	return func(c *spawnConfig) { c.capabilities = append(c.capabilities, capabilities...) }
}

// WithLimits replaces the kind's resource limits for this spawn.
func WithLimits(limits ResourceLimits) SpawnOption {
	return func(c *spawnConfig) { c.limits = &limits }
}

// WithSupervision replaces the kind's supervision policy for this spawn.
func WithSupervision(cfg supervision.Config) SpawnOption {
	return func(c *spawnConfig) { c.supervision = &cfg }
}

// WithAutoRestart overrides the kind's auto-restart flag for this spawn.
func WithAutoRestart(enabled bool) SpawnOption {
	return func(c *spawnConfig) { c.autoRestart = &enabled }
}

// RegisterKind stores the defaults for an actor kind. Registering the same
// kind again replaces the previous spec.
func (r *Registry) RegisterKind(spec KindSpec) error {
	if spec.Kind == "" {
		return errors.ErrInvalidKindSpec
	}
	r.kinds.Set(spec.Kind, spec.sanitize())
	return nil
}

// Kind returns the registered spec for a kind, or ErrKindNotRegistered.
func (r *Registry) Kind(kind string) (KindSpec, error) {
	spec, ok := r.kinds.Get(kind)
	if !ok {
		return KindSpec{}, errors.NewErrKindNotRegistered(kind)
	}
	return spec, nil
}

// Kinds returns the registered kind names in lexical order.
func (r *Registry) Kinds() []string {
	kinds := r.kinds.Keys()
	sort.Strings(kinds)
	return kinds
}

// spec resolves the defaults for a kind. Unknown kinds get the system
// defaults so a spawn never fails on the kind lookup alone.
func (r *Registry) spec(kind string) KindSpec {
	if spec, ok := r.kinds.Get(kind); ok {
		return spec
	}
	return DefaultKindSpec(kind).sanitize()
}

// Spawn creates an actor of the given kind, registers it under its supervisor
// and moves it Starting to Active. A failing pre-start hook rolls everything
// back so neither the registry nor the supervision tree keeps an orphan.
func (r *Registry) Spawn(ctx context.Context, kind string, opts ...SpawnOption) (*Actor, error) {
	spec := r.spec(kind)

	cfg := &spawnConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	id := cfg.id
	if id == "" {
		id = uuid.NewString()
	}
	parentID := cfg.parentID
	if parentID == "" {
		parentID = supervision.RootID
	}

	limits := spec.Limits
	if cfg.limits != nil {
		limits = *cfg.limits
		if limits.InboxCapacity == 0 {
			limits.InboxCapacity = DefaultResourceLimits().InboxCapacity
		}
	}
	supCfg := spec.Supervision
	if cfg.supervision != nil {
		supCfg = *cfg.supervision
		supCfg.Sanitize()
	}
	autoRestart := spec.AutoRestart
	if cfg.autoRestart != nil {
		autoRestart = *cfg.autoRestart
	}

	now := r.clock()
	actor := &Actor{
		id:            id,
		name:          cfg.name,
		kind:          kind,
		parentID:      parentID,
		capabilities:  mapset.NewSet(append(append([]string{}, spec.Capabilities...), cfg.capabilities...)...),
		limits:        limits,
		supervision:   supCfg,
		autoRestart:   autoRestart,
		createdAt:     now,
		status:        Starting,
		inbox:         NewInbox(id, limits.InboxCapacity),
		lastHeartbeat: now,
	}

	if _, ok := r.actors.Get(id); ok {
		return nil, errors.NewErrActorAlreadyExists(id)
	}
	if err := r.tree.AddChild(parentID, id, supCfg); err != nil {
		return nil, fmt.Errorf("failed to register actor=(%s) under supervisor=(%s): %w", id, parentID, err)
	}
	if !r.actors.SetIfAbsent(id, actor) {
		_ = r.tree.RemoveChild(id)
		return nil, errors.NewErrActorAlreadyExists(id)
	}

	if spec.PreStart != nil {
		if err := spec.PreStart(ctx, actor); err != nil {
			r.actors.Delete(id)
			_ = r.tree.RemoveChild(id)
			return nil, fmt.Errorf("pre-start failed for actor=(%s) kind=(%s): %w", id, kind, err)
		}
	}

	from, err := actor.transition(Active)
	if err != nil {
		r.actors.Delete(id)
		_ = r.tree.RemoveChild(id)
		return nil, err
	}

	r.publish(events.ActorSpawned{ActorID: id, ActorName: actor.Name(), ActorKind: kind, At: now})
	r.publishStatus(actor, from, Active)
	r.logger.Infof("actor=(%s) kind=(%s) spawned under supervisor=(%s)", id, kind, parentID)
	return actor, nil
}

// Actor returns the record for an identifier.
func (r *Registry) Actor(id string) (*Actor, error) {
	actor, ok := r.actors.Get(id)
	if !ok {
		return nil, errors.NewErrActorNotFound(id)
	}
	return actor, nil
}

// Actors returns a snapshot of all resident records, terminal ones included.
func (r *Registry) Actors() []*Actor {
	return r.actors.Values()
}

// Len returns the number of resident records.
func (r *Registry) Len() int {
	return r.actors.Len()
}

// Shutdown asks an actor to stop. The actor flips to Stopping, gets a
// shutdown control message appended to its inbox and finishes draining
// through CompleteStop.
func (r *Registry) Shutdown(ctx context.Context, id string) error {
	actor, err := r.Actor(id)
	if err != nil {
		return err
	}

	from, err := actor.transition(Stopping)
	if err != nil {
		return err
	}

	now := r.clock()
	control := Message{
		ID:        uuid.NewString(),
		From:      supervision.RootID,
		To:        id,
		Kind:      ShutdownKind,
		Timestamp: now,
		Priority:  PriorityCritical,
	}
	if err := actor.Inbox().Enqueue(control); err != nil {
		r.logger.Warnf("failed to append shutdown message to actor=(%s): %v", id, err)
	}

	r.publishStatus(actor, from, Stopping)
	r.logger.Infof("actor=(%s) stopping", id)
	return nil
}

// CompleteStop finishes the drain of a Stopping actor: the record goes
// Stopped, its inbox is disposed and its supervision node is removed. The
// record itself stays resident for inspection until Forget.
func (r *Registry) CompleteStop(id string) error {
	actor, err := r.Actor(id)
	if err != nil {
		return err
	}

	from, err := actor.transition(Stopped)
	if err != nil {
		return err
	}

	actor.Inbox().Dispose()
	if r.tree.Has(id) {
		if err := r.tree.RemoveChild(id); err != nil {
			r.logger.Warnf("failed to drop supervision node for actor=(%s): %v", id, err)
		}
	}

	r.publishStatus(actor, from, Stopped)
	r.logger.Infof("actor=(%s) stopped", id)
	return nil
}

// Forget drops a terminal record from the registry. Live actors cannot be
// forgotten.
func (r *Registry) Forget(id string) error {
	actor, err := r.Actor(id)
	if err != nil {
		return err
	}
	if !actor.Status().Terminal() {
		return fmt.Errorf("actor=(%s) status=(%s): only terminal actors can be forgotten", id, actor.Status())
	}
	r.actors.Delete(id)
	return nil
}

// Restart brings one actor back through RestartPending. The supervision
// budget is checked first so an exhausted subtree fails fast without touching
// the actor. The pre-start hook is retried with exponential backoff; when all
// attempts fail the actor is declared Crashed.
func (r *Registry) Restart(ctx context.Context, id string) error {
	return r.restart(ctx, id, true)
}

// restartSanctioned restarts an actor on behalf of a supervision decision.
// HandleFailure already consumed the budget, so the allowance is not checked
// again.
func (r *Registry) restartSanctioned(ctx context.Context, id string) error {
	return r.restart(ctx, id, false)
}

func (r *Registry) restart(ctx context.Context, id string, checkBudget bool) error {
	actor, err := r.Actor(id)
	if err != nil {
		return err
	}
	if status := actor.Status(); status.Terminal() {
		return fmt.Errorf("actor=(%s) status=(%s) %w", id, status, errors.ErrDead)
	}

	if checkBudget {
		if err := r.tree.AllowRestart(id); err != nil {
			return err
		}
	}

	from, err := actor.transition(RestartPending)
	if err != nil {
		return err
	}
	r.publishStatus(actor, from, RestartPending)

	spec := r.spec(actor.kind)
	retrier := retry.NewRetrier(restartAttempts, restartRetryMin, restartRetryMax)
	err = retrier.RunContext(ctx, func(ctx context.Context) error {
		if spec.PreStart != nil {
			if err := spec.PreStart(ctx, actor); err != nil {
				return err
			}
		}
		actor.refreshInbox()
		return nil
	})
	if err != nil {
		if _, terr := actor.transition(Crashed); terr == nil {
			r.publishStatus(actor, RestartPending, Crashed)
		}
		r.logger.Errorf("actor=(%s) failed to restart: %v", id, err)
		return fmt.Errorf("actor=(%s) restart failed: %w", id, err)
	}

	now := r.clock()
	if _, err := actor.transition(Active); err != nil {
		return err
	}
	actor.touch(now)
	restarts := actor.markRestarted()

	r.publishStatus(actor, RestartPending, Active)
	r.publish(events.ActorRestarted{ActorID: id, Restarts: restarts, At: now})
	r.logger.Infof("actor=(%s) restarted, total restarts=(%d)", id, restarts)
	return nil
}

// Respawn is the operator override for terminal actors. The record comes back
// as a fresh actor: new inbox, Active status, restored supervision node.
func (r *Registry) Respawn(ctx context.Context, id string) (*Actor, error) {
	actor, err := r.Actor(id)
	if err != nil {
		return nil, err
	}
	if status := actor.Status(); !status.Terminal() {
		return nil, errors.NewErrInvalidTransition(status.String(), Active.String())
	}

	spec := r.spec(actor.kind)
	if spec.PreStart != nil {
		if err := spec.PreStart(ctx, actor); err != nil {
			return nil, fmt.Errorf("pre-start failed for actor=(%s) kind=(%s): %w", id, actor.kind, err)
		}
	}

	if !r.tree.Has(id) {
		parentID := actor.parentID
		if !r.tree.Has(parentID) {
			parentID = supervision.RootID
		}
		if err := r.tree.AddChild(parentID, id, actor.supervision); err != nil {
			return nil, fmt.Errorf("failed to re-register actor=(%s) under supervisor=(%s): %w", id, parentID, err)
		}
	}

	now := r.clock()
	from := actor.reset(now)
	r.publish(events.ActorSpawned{ActorID: id, ActorName: actor.Name(), ActorKind: actor.kind, At: now})
	r.publishStatus(actor, from, Active)
	r.logger.Infof("actor=(%s) respawned by operator", id)
	return actor, nil
}

// Suspend flips a working actor to Suspended. Used when the transport reports
// a network partition around the actor.
func (r *Registry) Suspend(id string) error {
	actor, err := r.Actor(id)
	if err != nil {
		return err
	}
	from, err := actor.transition(Suspended)
	if err != nil {
		return err
	}
	r.publishStatus(actor, from, Suspended)
	r.logger.Warnf("actor=(%s) suspended", id)
	return nil
}

// Touch records a liveness signal for an actor.
func (r *Registry) Touch(id string) error {
	actor, err := r.Actor(id)
	if err != nil {
		return err
	}
	actor.touch(r.clock())
	return nil
}

// markBusy walks the recipient towards Busy along legal edges. Idle actors
// wake through Active first. Non-working statuses are left alone.
func (r *Registry) markBusy(actor *Actor) {
	for {
		switch actor.Status() {
		case Idle:
			if from, err := actor.transition(Active); err == nil {
				r.publishStatus(actor, from, Active)
				continue
			}
			return
		case Active:
			if from, err := actor.transition(Busy); err == nil {
				r.publishStatus(actor, from, Busy)
			}
			return
		default:
			return
		}
	}
}

// settle walks a Busy actor back to Active once its traffic is consumed.
func (r *Registry) settle(actor *Actor) {
	if actor.Status() != Busy {
		return
	}
	if from, err := actor.transition(Active); err == nil {
		r.publishStatus(actor, from, Active)
	}
}

func (r *Registry) publishStatus(actor *Actor, from, to Status) {
	if r.stream == nil {
		return
	}
	r.stream.Publish(events.ActorStatusChanged{
		ActorID: actor.ID(),
		From:    from.String(),
		To:      to.String(),
		At:      r.clock(),
	})
}

func (r *Registry) publish(event events.Event) {
	if r.stream == nil {
		return
	}
	r.stream.Publish(event)
}
