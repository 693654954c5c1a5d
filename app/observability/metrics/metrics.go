package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	BoatOperationsTotal    metric.Int64Counter
	TokensIssuedTotal      metric.Int64Counter
	AuthFailuresTotal      metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	initErr    error
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is installed.
func InitAppMetrics() error {
	once.Do(func() {
		appMetrics, initErr = newAppMetrics(otel.GetMeterProvider().Meter("owt-boats"))
	})
	return initErr
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.BoatOperationsTotal, err = meter.Int64Counter(
		"boat_operations_total",
		metric.WithDescription("Boat operations by operation and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("boat_operations_total: %w", err)
	}

	m.TokensIssuedTotal, err = meter.Int64Counter(
		"token_issued_total",
		metric.WithDescription("Access tokens issued"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("token_issued_total: %w", err)
	}

	m.AuthFailuresTotal, err = meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Rejected requests by reason (unauthenticated, forbidden)"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("auth_failures_total: %w", err)
	}

	m.DbQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("db_query_duration_seconds: %w", err)
	}

	m.DbQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("db_query_errors_total: %w", err)
	}
	return m, nil
}

// Get returns the global instruments, creating them on first use. The global
// provider delegates to whichever MeterProvider is installed later.
func Get() *AppMetrics {
	if err := InitAppMetrics(); err != nil {
		panic(fmt.Sprintf("metrics instruments not initialized: %v", err))
	}
	return appMetrics
}

// RecordBoatOperation counts one boat operation with its outcome.
func RecordBoatOperation(ctx context.Context, op, outcome string) {
	Get().BoatOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordAuthFailure counts a request rejected by the gate.
func RecordAuthFailure(ctx context.Context, reason string) {
	Get().AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// ObserveQuery records the duration of a database query and counts it as an
// error when err is non-nil.
func ObserveQuery(ctx context.Context, query string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("query", query))
	m := Get()
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
