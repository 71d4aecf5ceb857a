// Package telemetry wires the OpenTelemetry metrics pipeline.
//
// When enabled, pipeline instruments are exported over OTLP/gRPC to the
// configured collector. When disabled, the global meter provider stays a
// no-op and instrument calls cost nothing.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

// Config holds telemetry configuration.
type Config struct {
	// Enabled turns on OTLP metric export.
	Enabled bool `koanf:"enabled"`

	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint string `koanf:"endpoint"`

	// Insecure disables TLS on the collector connection.
	Insecure bool `koanf:"insecure"`

	// ServiceName labels exported metrics.
	ServiceName string `koanf:"service_name"`

	// ExportInterval is the periodic reader interval.
	ExportInterval time.Duration `koanf:"export_interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
	}
	if c.ServiceName == "" {
		c.ServiceName = "emojid"
	}
	if c.ExportInterval == 0 {
		c.ExportInterval = 30 * time.Second
	}
}

// Telemetry owns the meter provider lifecycle.
type Telemetry struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// Init sets up the global meter provider from config. A disabled config
// returns a Telemetry whose Shutdown is a no-op.
func Init(ctx context.Context, cfg Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	if !cfg.Enabled {
		return &Telemetry{logger: logger}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.ExportInterval))),
	)
	otel.SetMeterProvider(provider)

	logger.Info("telemetry enabled",
		zap.String("endpoint", cfg.Endpoint),
		zap.Duration("export_interval", cfg.ExportInterval))

	return &Telemetry{provider: provider, logger: logger}, nil
}

// Shutdown flushes pending metrics and releases the exporter.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down meter provider: %w", err)
	}
	return nil
}
