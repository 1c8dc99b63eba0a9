package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"

	"auto-parts-manager/internal/bridge"
)

// BridgeMetrics counts host engine round-trips per operation. It plugs into
// the bridge as its call recorder.
type BridgeMetrics struct {
	calls    api.Int64Counter
	errors   api.Int64Counter
	duration api.Float64Histogram
}

// NewBridgeMetrics registers the bridge instruments on the given meter.
func NewBridgeMetrics(meter api.Meter) (*BridgeMetrics, error) {
	calls, err := meter.Int64Counter("bridge_calls_total",
		api.WithDescription("Host engine calls, by operation"))
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter("bridge_call_errors_total",
		api.WithDescription("Failed host engine calls, by operation and outcome"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("bridge_call_duration_seconds",
		api.WithDescription("Host engine call latency, by operation"),
		api.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &BridgeMetrics{calls: calls, errors: errCounter, duration: duration}, nil
}

// RecordCall implements bridge.CallRecorder.
func (m *BridgeMetrics) RecordCall(ctx context.Context, op string, duration time.Duration, err error) {
	opAttr := attribute.String("op", op)

	m.calls.Add(ctx, 1, api.WithAttributes(opAttr))
	m.duration.Record(ctx, duration.Seconds(), api.WithAttributes(opAttr))

	if err == nil {
		return
	}

	outcome := "error"
	if errors.Is(err, bridge.ErrNotBound) {
		outcome = "unbound"
	}
	m.errors.Add(ctx, 1, api.WithAttributes(opAttr, attribute.String("outcome", outcome)))
}
