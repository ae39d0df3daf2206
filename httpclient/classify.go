package httpclient

import (
	"context"
	"io"
	"net/http"

	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

// Response is a successful outcome: a 2xx whose body decoded as Ok.
type Response[Ok any] struct {
	Body    Ok
	Context ResponseContext
}

// Classify executes req exactly once and classifies the result.
//
// A build, send or read failure yields a transport kind without context.
// Otherwise the body is read completely, a ResponseContext is captured and
// the status selects the shape: 2xx decodes as Ok, anything else as E. A
// body that does not fit yields KindDecode; a fitting error body yields
// KindAPI. Classify never asserts a particular status; use Narrow for that.
func Classify[Ok, E any, F format.Format](ctx context.Context, req *Request[F]) (*Response[Ok], error) {
	c := req.client

	ctx, cancel := context.WithTimeout(ctx, req.EffectiveTimeout())
	defer cancel()

	ctx, op := observability.StartOperation(ctx, c.metrics, req.method, req.url)
	resp, err := classify[Ok, E](ctx, req, op)

	kind, status := outcomeKindOK, 0
	if resp != nil {
		status = resp.Context.status
	}
	if o, ok := asOutcome(err); ok {
		kind = o.kind().String()
		if rc := o.responseContext(); rc != nil {
			status = rc.status
		}
	}
	op.End(ctx, kind, status, spanError(err))
	logOutcome(ctx, c.log, op, kind, status, err)

	return resp, err
}

func classify[Ok, E any, F format.Format](ctx context.Context, req *Request[F], op *observability.Operation) (*Response[Ok], error) {
	c := req.client

	httpReq, err := req.Build(ctx)
	if err != nil {
		return nil, newTransportError[E](KindBuild, err)
	}
	if h := c.config.RequestIDHeader; h != "" {
		op.SetRequestID(httpReq.Header.Get(h))
	}

	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		closeBody(httpResp)
		return nil, newTransportError[E](KindExecute, redactTransport(err))
	}
	defer closeBody(httpResp)

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, newTransportError[E](KindRead, err)
	}

	rc := NewResponseContext(httpReq.Method, httpReq.URL.String(), httpResp.StatusCode, string(raw))
	op.Received(ctx, rc.status, len(raw))

	var f F
	if !rc.IsSuccess() {
		errBody, err := format.Decode[E](f, rc.body)
		if err != nil {
			return nil, newDecodeError[E](rc, err)
		}
		return nil, newAPIError(rc, errBody)
	}

	okBody, err := format.Decode[Ok](f, rc.body)
	if err != nil {
		return nil, newDecodeError[E](rc, err)
	}
	return &Response[Ok]{Body: okBody, Context: rc}, nil
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

func logOutcome(ctx context.Context, log *logger.Logger, op *observability.Operation, kind string, status int, err error) {
	fields := logger.Fields(
		logger.FieldMethod, op.Method,
		logger.FieldURL, op.URL,
		logger.FieldKind, kind,
	)
	if status > 0 {
		fields[logger.FieldStatus] = status
	}
	if id := observability.TraceID(ctx); id != "" {
		fields[logger.FieldTraceID] = id
	}
	log = log.WithContext(ctx)
	fields = logger.MergeWithDuration(fields, op.Duration())

	if IsTransport(err) {
		log.Warn("request failed", logger.MergeWithError(fields, err))
		return
	}
	log.Debug("response classified", fields)
}

// ExpectOK classifies req and returns only the decoded success body.
func ExpectOK[Ok, E any, F format.Format](ctx context.Context, req *Request[F]) (Ok, error) {
	resp, err := Classify[Ok, E](ctx, req)
	if err != nil {
		var zero Ok
		return zero, err
	}
	return resp.Body, nil
}

// ExpectErr classifies req and requires a structured error response with the
// given status. A success becomes KindUnexpectedSuccess carrying the
// response context.
func ExpectErr[Ok, E any, F format.Format](ctx context.Context, req *Request[F], status int) (E, error) {
	resp, err := Classify[Ok, E](ctx, req)
	return NarrowResult[Ok, E](resp, err, status)
}
