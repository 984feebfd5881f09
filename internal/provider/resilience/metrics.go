package resilience

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/aircast/aircast/internal/provider/resilience"

// callMetrics records one data point per upstream attempt, so retries are
// visible individually. The prediction service is polled every few seconds
// per active session; its attempt rate and error rate are the first thing to
// look at when forecasts stall.
type callMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newCallMetrics() *callMetrics {
	meter := otel.Meter(meterName)

	duration, err := meter.Float64Histogram(
		"upstream.request.duration",
		metric.WithDescription("Duration of upstream HTTP attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil
	}

	total, err := meter.Int64Counter(
		"upstream.request.total",
		metric.WithDescription("Total number of upstream HTTP attempts"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil
	}

	return &callMetrics{duration: duration, total: total}
}

func (m *callMetrics) record(ctx context.Context, upstream string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("upstream.name", upstream),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	m.total.Add(ctx, 1, metric.WithAttributes(attrs...))
}
