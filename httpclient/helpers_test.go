package httpclient

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

type pet struct {
	ID     int    `json:"id" xml:"id" yaml:"id"`
	Name   string `json:"name" xml:"name" yaml:"name"`
	Status string `json:"status" xml:"status" yaml:"status"`
}

type apiError struct {
	Code    int    `json:"code" xml:"code" yaml:"code"`
	Message string `json:"message" xml:"message" yaml:"message" validate:"required"`
}

func newClient[F format.Format](t *testing.T, baseURL string, opts ...Option) *Client[F] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	c, err := New[F](Config{BaseURL: baseURL}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func newClientWithConfig(t *testing.T, cfg Config, opts ...Option) *Client[format.JSON] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	c, err := New[format.JSON](cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func newManualMetrics(t *testing.T) (*observability.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observability.NewMetrics(mp.Meter("httpclient-test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// outcomeCounts sums the outcome counter by its kind attribute.
func outcomeCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != observability.MetricOutcomeTotal {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				kind, _ := dp.Attributes.Value("kind")
				counts[kind.AsString()] += dp.Value
			}
		}
	}
	return counts
}
