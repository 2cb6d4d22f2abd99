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

package breaker

import (
	"fmt"
	"time"
)

// OpenError is the admission-control outcome returned when a send targets a
// key whose breaker is open. It is a fail-fast signal, not a recorded
// incident: callers must not feed it back into error statistics.
type OpenError struct {
	// Key is the blocked target.
	Key string
	// RetryAfter is the remaining time until the breaker permits a probe.
	// Zero when the half-open transition is imminent.
	RetryAfter time.Duration
}

// enforce compilation error
var _ error = (*OpenError)(nil)

// NewOpenError creates an OpenError for the given key.
func NewOpenError(key string, retryAfter time.Duration) *OpenError {
	return &OpenError{Key: key, RetryAfter: retryAfter}
}

// Error implements the standard error interface
func (e *OpenError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("circuit breaker open for key=(%s), retry after %s", e.Key, e.RetryAfter)
	}
	return fmt.Sprintf("circuit breaker open for key=(%s)", e.Key)
}
