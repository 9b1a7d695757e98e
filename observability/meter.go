package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/kbukum/carmarket/logger"
)

// Metric exporters.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
)

// MeterConfig configures the OpenTelemetry meter provider. Endpoint is the
// OTLP HTTP host:port (e.g., "localhost:4318") and is ignored by the
// Prometheus exporter, which is scraped instead.
type MeterConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Exporter       string        `yaml:"exporter" mapstructure:"exporter"`
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		Exporter:       ExporterPrometheus,
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// Validate checks the exporter name.
func (c *MeterConfig) Validate() error {
	switch c.Exporter {
	case ExporterPrometheus, ExporterOTLP:
		return nil
	default:
		return fmt.Errorf("metrics.exporter must be one of [prometheus, otlp] (got: %s)", c.Exporter)
	}
}

// MeterProvider is the installed SDK provider. Handler serves the
// Prometheus text format and is nil for OTLP export.
type MeterProvider struct {
	*sdkmetric.MeterProvider
	Handler http.Handler
}

// InitMeter installs a meter provider for the configured exporter as the
// global provider. The caller must shut it down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*MeterProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var (
		reader  sdkmetric.Reader
		handler http.Handler
	)
	switch config.Exporter {
	case ExporterPrometheus:
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		reader = exporter
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
	case ExporterOTLP:
		reader, err = newOTLPReader(ctx, config)
		if err != nil {
			return nil, err
		}
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"exporter", config.Exporter,
		"endpoint", config.Endpoint,
	))
	return &MeterProvider{MeterProvider: mp, Handler: handler}, nil
}

func newOTLPReader(ctx context.Context, config MeterConfig) (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	return sdkmetric.NewPeriodicReader(exporter, readerOpts...), nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", environment),
		),
	)
}
