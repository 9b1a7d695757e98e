// Package observability exports error metrics and health for the carmarket
// API through OpenTelemetry.
//
// The default exporter is Prometheus; InitMeter then returns a scrape
// handler to mount at /metrics. The "otlp" exporter pushes to an OTLP HTTP
// collector instead.
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("carmarket-api"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewErrorMetrics(mp.Meter("carmarket-api"))
//	metrics.Record(ctx, appErr)
//
// Without InitMeter the global no-op provider is used and recording is free.
package observability
