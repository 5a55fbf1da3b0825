package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"records-service/common/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc/codes"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func TestDatabaseMetrics_RecordQuery(t *testing.T) {
	reader, provider := newMeter()
	dm, err := metrics.NewDatabaseMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordQuery(ctx, "insert", "students", 3*time.Millisecond, nil)
	dm.RecordQuery(ctx, "insert", "students", 5*time.Millisecond, errors.New("duplicate key"))

	got := collect(t, reader)

	hist, ok := got["db.query.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	errs, ok := got["db.query.errors"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
}

func TestGrpcMetrics_RecordRequest(t *testing.T) {
	reader, provider := newMeter()
	gm, err := metrics.NewGrpcMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	gm.RecordRequest(ctx, "grpc.health.v1.Health", "Check", time.Millisecond, codes.OK)
	gm.RecordRequest(ctx, "grpc.health.v1.Health", "Check", time.Millisecond, codes.NotFound)

	got := collect(t, reader)

	total, ok := got["grpc.server.requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var sum int64
	for _, dp := range total.DataPoints {
		sum += dp.Value
	}
	assert.Equal(t, int64(2), sum)

	errs, ok := got["grpc.server.errors_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
}

func TestHealthMetrics_DependencyStatus(t *testing.T) {
	_, provider := newMeter()
	meter := provider.Meter("test")
	hm, err := metrics.NewHealthMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, hm.RegisterDependencies(ctx, meter, []string{"postgres"}))
	assert.False(t, hm.DependencyAvailable("postgres"))

	hm.RecordDependencyCheck(ctx, "postgres", time.Millisecond, nil)
	assert.True(t, hm.DependencyAvailable("postgres"))

	hm.RecordDependencyCheck(ctx, "postgres", time.Millisecond, errors.New("connection refused"))
	assert.False(t, hm.DependencyAvailable("postgres"))
}

func TestNewMock_IgnoresRecords(t *testing.T) {
	m := metrics.NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.Database.RecordQuery(ctx, "select", "students", time.Millisecond, nil)
		m.Messaging.RecordPublish(ctx, "nats", "students.events", time.Millisecond, errors.New("boom"))
		m.Messaging.RecordConnectionChange(ctx, "nats", 1)
		m.Health.RecordDependencyCheck(ctx, "postgres", time.Millisecond, nil)
		m.Grpc.RecordRequest(ctx, "svc", "method", time.Millisecond, codes.OK)
	})
}
