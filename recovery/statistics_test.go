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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsCounts(t *testing.T) {
	stats := NewStatistics()
	stats.Record(CategoryNetwork, SeverityHigh)
	stats.Record(CategoryNetwork, SeverityLow)
	stats.Record(CategoryStorage, SeverityHigh)

	assert.EqualValues(t, 3, stats.Total())
	assert.EqualValues(t, 2, stats.CategoryCount(CategoryNetwork))
	assert.EqualValues(t, 1, stats.CategoryCount(CategoryStorage))
	assert.Zero(t, stats.CategoryCount(CategoryMemory))
	assert.EqualValues(t, 2, stats.SeverityCount(SeverityHigh))
	assert.EqualValues(t, 1, stats.SeverityCount(SeverityLow))

	categories, severities := stats.Counts()
	assert.EqualValues(t, 2, categories[CategoryNetwork])
	assert.EqualValues(t, 2, severities[SeverityHigh])
}

func TestStatisticsWindowPruning(t *testing.T) {
	clock := newFakeClock()
	stats := NewStatistics(
		WithStatisticsWindow(time.Minute),
		WithStatisticsClock(clock.Now))

	for i := 0; i < 3; i++ {
		stats.Record(CategoryNetwork, SeverityHigh)
	}
	require.Equal(t, 3, stats.WindowedCount(CategoryNetwork))

	// the window rolls past the burst
	clock.Advance(2 * time.Minute)
	require.Zero(t, stats.WindowedCount(CategoryNetwork))

	stats.Record(CategoryNetwork, SeverityHigh)
	require.Equal(t, 1, stats.WindowedCount(CategoryNetwork))

	// all-time counters never shrink
	assert.EqualValues(t, 4, stats.CategoryCount(CategoryNetwork))
}

func TestStatisticsReset(t *testing.T) {
	stats := NewStatistics()
	stats.Record(CategoryActor, SeverityCritical)
	require.EqualValues(t, 1, stats.Total())

	stats.Reset()
	assert.Zero(t, stats.Total())
	assert.Zero(t, stats.CategoryCount(CategoryActor))
	assert.Zero(t, stats.WindowedCount(CategoryActor))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "low", SeverityLow.String())
	assert.Equal(t, "medium", SeverityMedium.String())
	assert.Equal(t, "high", SeverityHigh.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Empty(t, Severity(42).String())
}
