package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewAppMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := newAppMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	opAttrs := metric.WithAttributes(attribute.String("operation", "create"), attribute.String("outcome", "ok"))
	m.BoatOperationsTotal.Add(ctx, 1, opAttrs)
	m.BoatOperationsTotal.Add(ctx, 1, opAttrs)
	m.TokensIssuedTotal.Add(ctx, 1)
	m.DbQueryDurationSeconds.Record(ctx, 0.002)

	data := collect(t, reader)

	ops, ok := data["boat_operations_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, ops.DataPoints, 1)
	assert.Equal(t, int64(2), ops.DataPoints[0].Value)
	outcome, _ := ops.DataPoints[0].Attributes.Value("outcome")
	assert.Equal(t, "ok", outcome.AsString())

	tokens, ok := data["token_issued_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), tokens.DataPoints[0].Value)

	hist, ok := data["db_query_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	_, recorded := data["auth_failures_total"]
	assert.False(t, recorded)
}

func TestGlobalHelpersDoNotPanic(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordBoatOperation(ctx, "get", "not_found")
		RecordAuthFailure(ctx, "forbidden")
		ObserveQuery(ctx, "boats.find_all", time.Now(), nil)
	})
	assert.NotNil(t, Get())
}
