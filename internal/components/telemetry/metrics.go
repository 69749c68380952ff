package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meters holds the load test instruments. They record into whatever meter provider is global
// when NewMeters is called, which is a no-op provider unless Setup ran first.
type Meters struct {
	tasks           metric.Int64Counter
	taskDuration    metric.Float64Histogram
	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	users           metric.Int64UpDownCounter
}

func NewMeters() (Meters, error) {
	meter := otel.Meter("umami-loadtest/loadtest")

	var m Meters
	var err error
	m.tasks, err = meter.Int64Counter("loadtest.tasks", metric.WithDescription("Page visits executed, by task and outcome."))
	if err != nil {
		return Meters{}, err
	}
	m.taskDuration, err = meter.Float64Histogram("loadtest.task.duration", metric.WithUnit("ms"))
	if err != nil {
		return Meters{}, err
	}
	m.requests, err = meter.Int64Counter("loadtest.requests", metric.WithDescription("HTTP requests issued, by name and outcome."))
	if err != nil {
		return Meters{}, err
	}
	m.requestDuration, err = meter.Float64Histogram("loadtest.request.duration", metric.WithUnit("ms"))
	if err != nil {
		return Meters{}, err
	}
	m.users, err = meter.Int64UpDownCounter("loadtest.users", metric.WithDescription("Virtual users currently running."))
	if err != nil {
		return Meters{}, err
	}
	return m, nil
}

func outcome(failed bool) string {
	if failed {
		return "failure"
	}
	return "success"
}

func (m Meters) RecordTask(ctx context.Context, name string, duration time.Duration, failed bool) {
	attrs := metric.WithAttributes(
		attribute.String("task", name),
		attribute.String("outcome", outcome(failed)),
	)
	m.tasks.Add(ctx, 1, attrs)
	m.taskDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (m Meters) RecordRequest(ctx context.Context, name string, duration time.Duration, failed bool) {
	attrs := metric.WithAttributes(
		attribute.String("request", name),
		attribute.String("outcome", outcome(failed)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (m Meters) UserStarted(ctx context.Context) {
	m.users.Add(ctx, 1)
}

func (m Meters) UserStopped(ctx context.Context) {
	m.users.Add(ctx, -1)
}
