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

// Package supervision implements the restart-policy tree. Nodes are addressed
// by opaque ids and hold no pointers to one another, so the tree can be
// mutated and traversed under a single lock without aliasing hazards.
package supervision

import (
	"slices"
	"sync"
	"time"

	"github.com/seanchatmangpt/citty-sub010/errors"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/log"
)

// RootID is the id of the synthetic root node every tree is created with.
const RootID = "root"

// node is an arena entry. Parent and children are ids, never pointers.
type node struct {
	id       string
	parent   string // empty only for the root
	children []string
	cfg      Config
	restarts []time.Time // budget stamps inside the rolling window
}

// Decision is the outcome of handling a child failure: the list of node ids
// the caller must restart, in order.
type Decision struct {
	// SupervisorID is the node whose strategy produced the instruction.
	SupervisorID string
	// Strategy is the supervisor's strategy at decision time.
	Strategy Strategy
	// Restart lists the node ids to restart, in insertion order.
	Restart []string
}

// Tree is the supervision hierarchy. All operations are serialized by the
// tree's own mutex.
type Tree struct {
	mu    sync.RWMutex
	nodes map[string]*node

	rootConfig Config
	clock      func() time.Time
	logger     log.Logger
	stream     eventstream.Stream
}

// NewTree creates a tree holding only the root node.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		nodes:      make(map[string]*node),
		rootConfig: DefaultConfig(),
		clock:      time.Now,
		logger:     log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.nodes[RootID] = &node{
		id:  RootID,
		cfg: t.rootConfig,
	}
	return t
}

// AddChild registers childID under parentID with the given policy. Insertion
// order is preserved: it is significant for the rest_for_one strategy.
func (t *Tree) AddChild(parentID, childID string, cfg Config) error {
	cfg.Sanitize()

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, ok := t.nodes[parentID]
	if !ok {
		return errors.NewErrActorNotFound(parentID)
	}
	if _, ok := t.nodes[childID]; ok {
		return errors.NewErrActorAlreadyExists(childID)
	}

	t.nodes[childID] = &node{
		id:     childID,
		parent: parentID,
		cfg:    cfg,
	}
	parent.children = append(parent.children, childID)
	return nil
}

// RemoveChild removes childID and its whole subtree. The root cannot be
// removed.
func (t *Tree) RemoveChild(childID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if childID == RootID {
		return errors.NewErrInvalidTransition("root", "removed")
	}
	child, ok := t.nodes[childID]
	if !ok {
		return errors.NewErrActorNotFound(childID)
	}

	if parent, ok := t.nodes[child.parent]; ok {
		if idx := slices.Index(parent.children, childID); idx >= 0 {
			parent.children = slices.Delete(parent.children, idx, idx+1)
		}
	}
	t.removeSubtreeLocked(childID)
	return nil
}

func (t *Tree) removeSubtreeLocked(id string) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, childID := range n.children {
		t.removeSubtreeLocked(childID)
	}
	delete(t.nodes, id)
}

// Children returns the ordered children of the given node.
func (t *Tree) Children(id string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return nil, errors.NewErrActorNotFound(id)
	}
	return slices.Clone(n.children), nil
}

// Parent returns the parent id of the given node. The root has no parent.
func (t *Tree) Parent(id string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return "", errors.NewErrActorNotFound(id)
	}
	return n.parent, nil
}

// Has reports whether the given node is in the tree.
func (t *Tree) Has(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Config returns the supervision policy of the given node.
func (t *Tree) Config(id string) (Config, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return Config{}, errors.NewErrActorNotFound(id)
	}
	return n.cfg, nil
}

// Restarts returns the number of failures the node absorbed inside its
// current rolling window.
func (t *Tree) Restarts(id string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return 0, errors.NewErrActorNotFound(id)
	}
	n.pruneLocked(t.clock())
	return len(n.restarts), nil
}

// AllowRestart reports whether the supervisor of the given node would absorb
// one more failure right now. It consumes nothing: HandleFailure still
// performs its own accounting.
func (t *Tree) AllowRestart(childID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	child, ok := t.nodes[childID]
	if !ok {
		return errors.NewErrActorNotFound(childID)
	}
	if child.parent == "" {
		return errors.NewErrRestartBudgetExhausted(childID)
	}
	parent := t.nodes[child.parent]
	if !parent.allowLocked(t.clock()) {
		return errors.NewErrRestartBudgetExhausted(childID)
	}
	return nil
}

// HandleFailure reports a failed node and returns the restart instruction its
// supervisor's strategy produced. A supervisor whose budget is exhausted is
// itself treated as failed one level up; when the escalation reaches the
// root, a SupervisionEscalated event is published and
// ErrRestartBudgetExhausted returned.
func (t *Tree) HandleFailure(childID string) (*Decision, error) {
	t.mu.Lock()
	decision, escalation, err := t.handleFailureLocked(childID)
	t.mu.Unlock()

	if escalation != nil {
		t.logger.Warnf("supervision budget exhausted for node=(%s), escalating to system", escalation.ActorID)
		if t.stream != nil {
			t.stream.Publish(*escalation)
		}
	}
	return decision, err
}

func (t *Tree) handleFailureLocked(childID string) (*Decision, *events.SupervisionEscalated, error) {
	child, ok := t.nodes[childID]
	if !ok {
		return nil, nil, errors.NewErrActorNotFound(childID)
	}

	if child.parent == "" {
		// the root cannot restart itself
		escalation := &events.SupervisionEscalated{
			ActorID:  childID,
			Strategy: child.cfg.Strategy.String(),
			Restarts: len(child.restarts),
			Window:   child.cfg.Window,
			At:       t.clock(),
		}
		return nil, escalation, errors.ErrRestartBudgetExhausted
	}

	parent := t.nodes[child.parent]
	now := t.clock()
	if !parent.allowLocked(now) {
		// the supervisor gave up: it becomes the failed child one level up
		decision, escalation, err := t.handleFailureLocked(parent.id)
		if escalation != nil {
			escalation.ActorID = childID
			escalation.Strategy = parent.cfg.Strategy.String()
			escalation.Restarts = len(parent.restarts)
			escalation.Window = parent.cfg.Window
		}
		return decision, escalation, err
	}

	parent.restarts = append(parent.restarts, now)
	return &Decision{
		SupervisorID: parent.id,
		Strategy:     parent.cfg.Strategy,
		Restart:      t.expandLocked(parent.restartSetLocked(childID)),
	}, nil, nil
}

// expandLocked widens restart instructions to whole subtrees, parent before
// children, so restarting a supervisor restarts everything under it.
func (t *Tree) expandLocked(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = t.appendSubtreeLocked(out, id)
	}
	return out
}

func (t *Tree) appendSubtreeLocked(out []string, id string) []string {
	n, ok := t.nodes[id]
	if !ok {
		return out
	}
	out = append(out, id)
	for _, childID := range n.children {
		out = t.appendSubtreeLocked(out, childID)
	}
	return out
}

// restartSetLocked applies the node's strategy to the failed child and
// returns the ids to restart.
func (n *node) restartSetLocked(failedID string) []string {
	switch n.cfg.Strategy {
	case OneForAll:
		return slices.Clone(n.children)
	case RestForOne:
		idx := slices.Index(n.children, failedID)
		if idx < 0 {
			return []string{failedID}
		}
		return slices.Clone(n.children[idx:])
	default:
		return []string{failedID}
	}
}

// allowLocked reports whether the node can absorb one more failure.
func (n *node) allowLocked(now time.Time) bool {
	n.pruneLocked(now)
	return len(n.restarts) < n.cfg.MaxRestarts
}

// pruneLocked drops budget stamps older than the rolling window.
func (n *node) pruneLocked(now time.Time) {
	cutoff := now.Add(-n.cfg.Window)
	idx := 0
	for idx < len(n.restarts) && !n.restarts[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		n.restarts = append(n.restarts[:0], n.restarts[idx:]...)
	}
}
