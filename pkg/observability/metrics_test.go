package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	return red, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "git_blame", "ok", time.Millisecond*100)

	rm := collectMetrics(t, reader)

	reqTotal := findMetric(rm, "gitattr.requests.total")
	require.NotNil(t, reqTotal, "gitattr.requests.total metric not found")

	reqDuration := findMetric(rm, "gitattr.request.duration.seconds")
	require.NotNil(t, reqDuration, "gitattr.request.duration.seconds metric not found")
}

func TestREDMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	red.RecordRequest(ctx, "git_commit_detail", "error", time.Second)

	rm := collectMetrics(t, reader)

	errTotal := findMetric(rm, "gitattr.errors.total")
	require.NotNil(t, errTotal, "gitattr.errors.total metric not found")
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)
	ctx := context.Background()

	done := red.TrackInflight(ctx, "blame")

	rm := collectMetrics(t, reader)

	inflight := findMetric(rm, "gitattr.inflight.requests")
	require.NotNil(t, inflight, "gitattr.inflight.requests metric not found")

	done()

	rm = collectMetrics(t, reader)
	inflight = findMetric(rm, "gitattr.inflight.requests")
	require.NotNil(t, inflight)
}

func TestNewREDMetrics_WithNilMeter(t *testing.T) {
	t.Parallel()
	// Should not panic with a no-op meter.
	cfg := observability.DefaultConfig()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(providers.Meter)
	require.NoError(t, err)
	assert.NotNil(t, red)

	// Should not panic on recording.
	red.RecordRequest(context.Background(), "test", "ok", time.Millisecond)
}

func TestREDMetrics_Observe(t *testing.T) {
	t.Parallel()
	red, reader := setupTestMeter(t)

	boom := errors.New("boom")

	require.NoError(t, red.Observe(context.Background(), "blame", func(context.Context) error { return nil }))
	require.ErrorIs(t, red.Observe(context.Background(), "blame", func(context.Context) error { return boom }), boom)

	rm := collectMetrics(t, reader)

	reqTotal := findMetric(rm, "gitattr.requests.total")
	require.NotNil(t, reqTotal)

	sum, ok := reqTotal.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	assert.Equal(t, int64(2), total)
	assert.NotNil(t, findMetric(rm, "gitattr.errors.total"))
}

func TestREDMetrics_ObserveNilReceiver(t *testing.T) {
	t.Parallel()

	var red *observability.REDMetrics

	called := false
	err := red.Observe(context.Background(), "blame", func(context.Context) error {
		called = true

		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
