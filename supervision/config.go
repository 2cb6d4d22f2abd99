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

package supervision

import (
	"time"

	"github.com/seanchatmangpt/citty-sub010/eventstream"
	"github.com/seanchatmangpt/citty-sub010/log"
)

// Config is the supervision policy a node applies to its children.
type Config struct {
	// Strategy decides which children restart when one fails.
	Strategy Strategy
	// MaxRestarts is the number of child failures the node absorbs within the
	// rolling Window before escalating. Zero escalates on the first failure.
	MaxRestarts int
	// Window is the rolling window MaxRestarts is counted within.
	Window time.Duration
}

// DefaultConfig returns the policy applied when a kind does not declare one.
func DefaultConfig() Config {
	return Config{
		Strategy:    OneForOne,
		MaxRestarts: 3,
		Window:      time.Minute,
	}
}

// Sanitize adjusts invalid config values to their defaults.
func (c *Config) Sanitize() {
	if c.Strategy < OneForOne || c.Strategy > RestForOne {
		c.Strategy = OneForOne
	}
	if c.MaxRestarts < 0 {
		c.MaxRestarts = 0
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the tree logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Tree) { t.logger = logger }
}

// WithClock overrides the time source used for restart budgets. Intended for
// tests that drive the tree with a simulated clock.
func WithClock(clock func() time.Time) Option {
	return func(t *Tree) { t.clock = clock }
}

// WithStream sets the event stream root escalations are published on.
func WithStream(stream eventstream.Stream) Option {
	return func(t *Tree) { t.stream = stream }
}

// WithRootConfig sets the root node's supervision policy.
func WithRootConfig(cfg Config) Option {
	return func(t *Tree) {
		cfg.Sanitize()
		t.rootConfig = cfg
	}
}
