package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/carmarket/errors"
)

// Metric names.
const (
	MetricErrorsTotal = "errors.total"
	MetricFieldIssues = "errors.field_issues"
	AttrErrorCode     = "error_code"
	AttrStatusClass   = "status_class"
)

// ErrorMetrics counts error envelopes sent to clients.
type ErrorMetrics struct {
	errorsTotal metric.Int64Counter
	fieldIssues metric.Int64Histogram
}

// NewErrorMetrics creates the instruments on the given meter.
func NewErrorMetrics(meter metric.Meter) (*ErrorMetrics, error) {
	errorsTotal, err := meter.Int64Counter(MetricErrorsTotal,
		metric.WithDescription("Error responses by error code and status class"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorsTotal, err)
	}

	fieldIssues, err := meter.Int64Histogram(MetricFieldIssues,
		metric.WithDescription("Number of field issues per validation error response"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricFieldIssues, err)
	}

	return &ErrorMetrics{errorsTotal: errorsTotal, fieldIssues: fieldIssues}, nil
}

// Record counts one error response. Nil receivers are ignored so callers
// can run without metrics.
func (m *ErrorMetrics) Record(ctx context.Context, appErr *errors.AppError) {
	if m == nil || appErr == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrErrorCode, string(appErr.Code())),
		attribute.String(AttrStatusClass, StatusClass(appErr.Status())),
	)
	m.errorsTotal.Add(ctx, 1, attrs)
	if n := len(appErr.Envelope().Errors); n > 0 {
		m.fieldIssues.Record(ctx, int64(n), metric.WithAttributes(
			attribute.String(AttrErrorCode, string(appErr.Code())),
		))
	}
}

// StatusClass maps 404 to "4xx".
func StatusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}
