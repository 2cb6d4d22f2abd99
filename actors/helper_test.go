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
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/seanchatmangpt/citty-sub010/breaker"
	"github.com/seanchatmangpt/citty-sub010/events"
	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/log"
	"github.com/seanchatmangpt/citty-sub010/supervision"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fixture wires a registry, router and health monitor around a fake clock
// for white-box component tests.
type fixture struct {
	clock    *fakeClock
	stream   eventstream.Stream
	tree     *supervision.Tree
	bank     *breaker.Bank
	registry *Registry
	router   *Router
	health   *HealthMonitor
}

func newFixture(t *testing.T, rootCfg ...supervision.Config) *fixture {
	t.Helper()
	clock := newFakeClock()
	stream := eventstream.New()
	t.Cleanup(stream.Close)

	treeOpts := []supervision.Option{
		supervision.WithClock(clock.Now),
		supervision.WithStream(stream),
	}
	if len(rootCfg) > 0 {
		treeOpts = append(treeOpts, supervision.WithRootConfig(rootCfg[0]))
	}
	tree := supervision.NewTree(treeOpts...)
	registry := newRegistry(log.DiscardLogger, clock.Now, stream, tree)
	bank := breaker.NewBank(breaker.WithClock(clock.Now))
	router := newRouter(routerConfig{
		logger:   log.DiscardLogger,
		clock:    clock.Now,
		stream:   stream,
		bank:     bank,
		registry: registry,
	})
	health := newHealthMonitor(log.DiscardLogger, clock.Now, stream, registry, router, tree, DefaultHeartbeatInterval)

	return &fixture{
		clock:    clock,
		stream:   stream,
		tree:     tree,
		bank:     bank,
		registry: registry,
		router:   router,
		health:   health,
	}
}

// subscribe attaches a fresh subscriber to the given topics.
func (f *fixture) subscribe(topics ...string) eventstream.Subscriber {
	sub := f.stream.AddSubscriber()
	for _, topic := range topics {
		f.stream.Subscribe(sub, topic)
	}
	return sub
}

// drainEvents empties whatever the subscriber buffered so far.
func drainEvents(sub eventstream.Subscriber) []events.Event {
	collected := make([]events.Event, 0)
	for event := range sub.Iterator() {
		collected = append(collected, event)
	}
	return collected
}

// eventsOfKind filters a drained batch by event kind.
func eventsOfKind(batch []events.Event, kind events.Kind) []events.Event {
	matched := make([]events.Event, 0)
	for _, event := range batch {
		if event.Kind() == kind {
			matched = append(matched, event)
		}
	}
	return matched
}
