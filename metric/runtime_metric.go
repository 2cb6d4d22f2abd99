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

// Package metric defines the OpenTelemetry instruments the runtime reports on.
package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetric defines the runtime metrics
type RuntimeMetric struct {
	messagesRouted   metric.Int64Counter
	deliveriesFailed metric.Int64Counter
	errorsRecorded   metric.Int64Counter
	escalations      metric.Int64Counter
	breakerOpens     metric.Int64Counter

	actorsCount         metric.Int64ObservableGauge
	faultToleranceScore metric.Float64ObservableGauge
}

// NewRuntimeMetric creates an instance of RuntimeMetric
func NewRuntimeMetric(meter metric.Meter) (*RuntimeMetric, error) {
	runtimeMetric := new(RuntimeMetric)
	var err error

	if runtimeMetric.messagesRouted, err = meter.Int64Counter(
		"messages_routed",
		metric.WithDescription("Total number of messages accepted for routing"),
	); err != nil {
		return nil, fmt.Errorf("failed to create messagesRouted instrument, %v", err)
	}

	if runtimeMetric.deliveriesFailed, err = meter.Int64Counter(
		"deliveries_failed_total",
		metric.WithDescription("Total number of messages that exhausted their delivery retries"),
	); err != nil {
		return nil, fmt.Errorf("failed to create deliveriesFailed instrument, %v", err)
	}

	if runtimeMetric.errorsRecorded, err = meter.Int64Counter(
		"errors_recorded_total",
		metric.WithDescription("Total number of errors recorded by the error handler"),
	); err != nil {
		return nil, fmt.Errorf("failed to create errorsRecorded instrument, %v", err)
	}

	if runtimeMetric.escalations, err = meter.Int64Counter(
		"escalations_total",
		metric.WithDescription("Total number of errors escalated to operators"),
	); err != nil {
		return nil, fmt.Errorf("failed to create escalations instrument, %v", err)
	}

	if runtimeMetric.breakerOpens, err = meter.Int64Counter(
		"breaker_open_total",
		metric.WithDescription("Total number of circuit breaker transitions to open"),
	); err != nil {
		return nil, fmt.Errorf("failed to create breakerOpens instrument, %v", err)
	}

	if runtimeMetric.actorsCount, err = meter.Int64ObservableGauge(
		"actors_count",
		metric.WithDescription("Total number of registered actors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create actorsCount instrument, %v", err)
	}

	if runtimeMetric.faultToleranceScore, err = meter.Float64ObservableGauge(
		"fault_tolerance_score",
		metric.WithDescription("Health score of the actor population between 0 and 100"),
	); err != nil {
		return nil, fmt.Errorf("failed to create faultToleranceScore instrument, %v", err)
	}

	return runtimeMetric, nil
}

// MessagesRouted returns the messages routed counter
func (x *RuntimeMetric) MessagesRouted() metric.Int64Counter {
	return x.messagesRouted
}

// DeliveriesFailed returns the failed deliveries counter
func (x *RuntimeMetric) DeliveriesFailed() metric.Int64Counter {
	return x.deliveriesFailed
}

// ErrorsRecorded returns the recorded errors counter
func (x *RuntimeMetric) ErrorsRecorded() metric.Int64Counter {
	return x.errorsRecorded
}

// Escalations returns the escalations counter
func (x *RuntimeMetric) Escalations() metric.Int64Counter {
	return x.escalations
}

// BreakerOpens returns the breaker open transitions counter
func (x *RuntimeMetric) BreakerOpens() metric.Int64Counter {
	return x.breakerOpens
}

// ActorsCount returns the total number of registered actors gauge
func (x *RuntimeMetric) ActorsCount() metric.Int64ObservableGauge {
	return x.actorsCount
}

// FaultToleranceScore returns the health score gauge
func (x *RuntimeMetric) FaultToleranceScore() metric.Float64ObservableGauge {
	return x.faultToleranceScore
}
