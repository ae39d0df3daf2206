package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/apiclient/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a periodic OTLP/HTTP meter provider globally.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
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

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricOutcomeTotal    = "apiclient.outcome.total"
	MetricRequestDuration = "apiclient.request.duration"
	MetricRequestActive   = "apiclient.request.active"
	MetricResponseSize    = "apiclient.response.size"
)

// Metrics holds the instruments recorded per classified request.
type Metrics struct {
	outcomeTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	responseSize    metric.Int64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	outcomeTotal, err := meter.Int64Counter(MetricOutcomeTotal,
		metric.WithDescription("Classified responses by outcome kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricOutcomeTotal, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Time from build to classification in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	requestActive, err := meter.Int64UpDownCounter(MetricRequestActive,
		metric.WithDescription("Requests currently being executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestActive, err)
	}

	responseSize, err := meter.Int64Histogram(MetricResponseSize,
		metric.WithDescription("Buffered response body size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricResponseSize, err)
	}

	return &Metrics{
		outcomeTotal:    outcomeTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		responseSize:    responseSize,
	}, nil
}

// RecordStart increments the active request count.
func (m *Metrics) RecordStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordOutcome decrements active requests and counts one classified outcome.
// A zero status means no response was received.
func (m *Metrics) RecordOutcome(ctx context.Context, kind, method string, status int, d time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("method", method),
	}
	if status > 0 {
		attrs = append(attrs, attribute.String("status", strconv.Itoa(status)))
	}
	m.requestActive.Add(ctx, -1)
	m.outcomeTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("method", method),
	))
}

// RecordResponseSize records the size of a fully read body.
func (m *Metrics) RecordResponseSize(ctx context.Context, method string, n int) {
	m.responseSize.Record(ctx, int64(n), metric.WithAttributes(
		attribute.String("method", method),
	))
}
