// Package telemetry wires OpenTelemetry metrics for the application: one
// meter provider with either a Prometheus scrape endpoint or an OTLP gRPC
// push exporter, selected by configuration.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "auto-parts-manager"

// Telemetry holds the meter provider and, for the scraper exporter, the HTTP
// server exposing /metrics.
type Telemetry struct {
	provider *metric.MeterProvider
	meter    api.Meter
	server   *http.Server
}

// Init sets up the meter provider. exporter selects the backend: "scraper"
// serves Prometheus metrics on scrapeAddr, anything else pushes over OTLP
// gRPC to OTEL_EXPORTER_OTLP_METRICS_ENDPOINT (localhost:4317 by default).
// Init never fails hard: on exporter errors it returns a Telemetry whose
// Meter records nothing.
func Init(ctx context.Context, exporter, scrapeAddr string) *Telemetry {
	t := &Telemetry{}

	if exporter == "scraper" {
		slog.Info("Starting metrics with scraper exporter", "addr", scrapeAddr)
		t.initScrapeMetrics(scrapeAddr)
	} else {
		slog.Info("Starting metrics with grpc exporter")
		t.initGRPCMetrics(ctx)
	}

	if t.meter == nil {
		t.meter = otel.Meter(meterName)
	}
	return t
}

// Meter returns the application meter.
func (t *Telemetry) Meter() api.Meter {
	return t.meter
}

// Shutdown flushes pending metrics and stops the scrape server if running.
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t.provider != nil {
		if err := t.provider.ForceFlush(ctx); err != nil {
			slog.Warn("Could not flush metrics", "error", err)
		}
	}
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			slog.Warn("Could not shut down metrics server", "error", err)
		}
		slog.Info("Metrics server stopped")
	}
}

func (t *Telemetry) initGRPCMetrics(ctx context.Context) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		slog.Error("Creating gRPC metrics exporter", "error", err)
		return
	}

	t.provider = metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(t.provider)
	t.meter = t.provider.Meter(meterName)
}

func (t *Telemetry) initScrapeMetrics(addr string) {
	exporter, err := prometheus.New()
	if err != nil {
		slog.Error("Creating Prometheus scrape exporter", "error", err)
		return
	}

	t.provider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(t.provider)
	t.meter = t.provider.Meter(meterName)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	t.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		slog.Info("Serving metrics", "addr", addr+"/metrics")
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server exited", "error", err)
		}
	}()
}
