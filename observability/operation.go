package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one request from build to classification.
type Operation struct {
	Method    string
	URL       string
	StartTime time.Time

	span    trace.Span
	metrics *Metrics
}

// StartOperation opens a client span and bumps the active gauge. A nil
// metrics skips metric recording.
func StartOperation(ctx context.Context, metrics *Metrics, method, url string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, SpanClassify,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrURL, url),
		),
	)
	op := &Operation{
		Method:    method,
		URL:       url,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
	if metrics != nil {
		metrics.RecordStart(ctx)
	}
	return ctx, op
}

// SetRequestID tags the span with the request ID sent upstream.
func (op *Operation) SetRequestID(id string) {
	if id != "" {
		op.span.SetAttributes(attribute.String(AttrRequestID, id))
	}
}

// Received records the status and body size once the body is buffered.
func (op *Operation) Received(ctx context.Context, status, bodySize int) {
	op.span.SetAttributes(
		attribute.Int(AttrStatusCode, status),
		attribute.Int(AttrBodySize, bodySize),
	)
	if op.metrics != nil {
		op.metrics.RecordResponseSize(ctx, op.Method, bodySize)
	}
}

// End closes the span and records the outcome. status is zero when the
// request never produced a response.
func (op *Operation) End(ctx context.Context, kind string, status int, err error) {
	d := op.Duration()

	op.span.SetAttributes(
		attribute.String(AttrOutcomeKind, kind),
		attribute.Int64(AttrDurationMs, d.Milliseconds()),
	)
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, kind)
	} else {
		op.span.SetStatus(codes.Ok, "")
	}
	op.span.End()

	if op.metrics != nil {
		op.metrics.RecordOutcome(ctx, kind, op.Method, status, d)
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
