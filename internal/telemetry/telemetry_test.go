package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"auto-parts-manager/internal/bridge"
)

func collect(t *testing.T, reader *metric.ManualReader) metricdata.ScopeMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
	return rm.ScopeMetrics[0]
}

func metricNames(sm metricdata.ScopeMetrics) []string {
	var names []string
	for _, m := range sm.Metrics {
		names = append(names, m.Name)
	}
	return names
}

func TestBridgeMetricsRecordCall(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	bm, err := NewBridgeMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordCall(ctx, "saveOrder", 10*time.Millisecond, nil)
	bm.RecordCall(ctx, "saveOrder", 5*time.Millisecond, errors.New("boom"))
	bm.RecordCall(ctx, "getUnits", time.Millisecond, bridge.ErrNotBound)

	sm := collect(t, reader)
	names := metricNames(sm)
	assert.Contains(t, names, "bridge_calls_total")
	assert.Contains(t, names, "bridge_call_errors_total")
	assert.Contains(t, names, "bridge_call_duration_seconds")

	for _, m := range sm.Metrics {
		switch m.Name {
		case "bridge_calls_total":
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			assert.Equal(t, int64(3), total)
		case "bridge_call_errors_total":
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			// One transport failure plus one unbound operation.
			assert.Equal(t, int64(2), total)
			assert.Len(t, sum.DataPoints, 2)
		}
	}
}

func TestHTTPMetricsRegister(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	hm, err := NewHTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, hm.Middleware())
}
