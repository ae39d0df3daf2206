package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	apperrors "github.com/kbukum/apiclient/errors"
)

// Kind is the closed set of failure outcomes.
type Kind int

const (
	// KindAPI is a non-2xx response whose body decoded as the error shape.
	KindAPI Kind = iota + 1
	// KindDecode is a body that did not decode as the shape its status implied.
	KindDecode
	// KindUnexpectedSuccess is a success where an error response was required.
	KindUnexpectedSuccess
	// KindUnexpectedStatus is a response whose status differs from the asserted one.
	KindUnexpectedStatus
	// KindBuild is a request that could not be constructed.
	KindBuild
	// KindExecute is a request that produced no response.
	KindExecute
	// KindRead is a response whose body could not be read to the end.
	KindRead
)

var kindNames = map[Kind]string{
	KindAPI:               "api_error",
	KindDecode:            "decode",
	KindUnexpectedSuccess: "unexpected_success",
	KindUnexpectedStatus:  "unexpected_status",
	KindBuild:             "build",
	KindExecute:           "execute",
	KindRead:              "read",
}

// String returns the snake_case name used in logs and metrics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsTransport reports whether k happened before a full response was observed.
func (k Kind) IsTransport() bool {
	return k == KindBuild || k == KindExecute || k == KindRead
}

// outcomeKindOK labels successful classifications in logs and metrics.
const outcomeKindOK = "ok"

// Error is a failed outcome. E is the API's structured error shape.
//
// Transport kinds never carry a context. KindUnexpectedSuccess carries one
// unless it was produced from a bare success. Every other kind always does.
type Error[E any] struct {
	Kind Kind
	// Body is the decoded error response (KindAPI).
	Body E
	// Expected is the asserted status (KindUnexpectedStatus).
	Expected int
	// Err is the underlying cause (transport kinds and KindDecode).
	Err error

	ctx *ResponseContext
}

func newTransportError[E any](kind Kind, err error) *Error[E] {
	return &Error[E]{Kind: kind, Err: err}
}

func newDecodeError[E any](rc ResponseContext, err error) *Error[E] {
	return &Error[E]{Kind: KindDecode, Err: err, ctx: &rc}
}

func newAPIError[E any](rc ResponseContext, body E) *Error[E] {
	return &Error[E]{Kind: KindAPI, Body: body, ctx: &rc}
}

func unexpectedStatus[E any](rc ResponseContext, expected int) *Error[E] {
	return &Error[E]{Kind: KindUnexpectedStatus, Expected: expected, ctx: &rc}
}

// unexpectedSuccess takes a nil rc when only the fact of success is known.
func unexpectedSuccess[E any](rc *ResponseContext) *Error[E] {
	return &Error[E]{Kind: KindUnexpectedSuccess, ctx: rc}
}

// Context returns the observed response, if the kind carries one.
func (e *Error[E]) Context() (ResponseContext, bool) {
	if e.ctx == nil {
		return ResponseContext{}, false
	}
	return *e.ctx, true
}

// StatusCode returns the observed status, or 0 without a context.
func (e *Error[E]) StatusCode() int {
	if e.ctx == nil {
		return 0
	}
	return e.ctx.status
}

// Error renders the method and URL, one line describing the kind and the raw
// body. The first and last lines are omitted without a context; the last is
// omitted for an empty body.
func (e *Error[E]) Error() string {
	var b strings.Builder
	if e.ctx != nil {
		b.WriteString(e.ctx.method)
		b.WriteByte(' ')
		b.WriteString(e.ctx.url)
		b.WriteByte('\n')
	}
	b.WriteString(e.summary())
	if e.ctx != nil && e.ctx.body != "" {
		b.WriteByte('\n')
		b.WriteString(e.ctx.body)
	}
	return b.String()
}

func (e *Error[E]) summary() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("API error response (status %d): %+v", e.StatusCode(), e.Body)
	case KindDecode:
		return fmt.Sprintf("failed decoding response (status %d): %v", e.StatusCode(), e.Err)
	case KindUnexpectedSuccess:
		return "expected error response, got success"
	case KindUnexpectedStatus:
		return fmt.Sprintf("expected status %d, got %d", e.Expected, e.StatusCode())
	case KindBuild:
		return fmt.Sprintf("failed building request: %v", e.Err)
	case KindExecute:
		return fmt.Sprintf("failed executing request: %v", e.Err)
	case KindRead:
		return fmt.Sprintf("failed reading response body: %v", e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the transport or decode cause to errors.Is and errors.As.
func (e *Error[E]) Unwrap() error { return e.Err }

func (e *Error[E]) kind() Kind { return e.Kind }

func (e *Error[E]) responseContext() *ResponseContext { return e.ctx }

func (e *Error[E]) expectedStatus() int { return e.Expected }

// outcome is satisfied by *Error[E] for every E so helpers need no type
// argument.
type outcome interface {
	error
	kind() Kind
	responseContext() *ResponseContext
	expectedStatus() int
}

func asOutcome(err error) (outcome, bool) {
	var o outcome
	if err == nil || !errors.As(err, &o) {
		return nil, false
	}
	return o, true
}

// KindOf returns the kind of the classification error in err's chain.
func KindOf(err error) (Kind, bool) {
	o, ok := asOutcome(err)
	if !ok {
		return 0, false
	}
	return o.kind(), true
}

// ContextOf returns the response context of the classification error in
// err's chain, if it has one.
func ContextOf(err error) (ResponseContext, bool) {
	o, ok := asOutcome(err)
	if !ok || o.responseContext() == nil {
		return ResponseContext{}, false
	}
	return *o.responseContext(), true
}

// ResponseText returns the raw body behind err, when one was read.
func ResponseText(err error) (string, bool) {
	rc, ok := ContextOf(err)
	if !ok {
		return "", false
	}
	return rc.body, true
}

func isKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// IsAPIError reports whether err is a structured API error response.
func IsAPIError(err error) bool { return isKind(err, KindAPI) }

// IsDecode reports whether err is a body that failed to decode.
func IsDecode(err error) bool { return isKind(err, KindDecode) }

// IsUnexpectedStatus reports whether err is a status assertion failure.
func IsUnexpectedStatus(err error) bool { return isKind(err, KindUnexpectedStatus) }

// IsUnexpectedSuccess reports whether err is a success where an error was expected.
func IsUnexpectedSuccess(err error) bool { return isKind(err, KindUnexpectedSuccess) }

// IsTransport reports whether err happened before a response was observed.
func IsTransport(err error) bool {
	k, ok := KindOf(err)
	return ok && k.IsTransport()
}

// ToAppError maps a classification error onto the application error
// vocabulary so callers serving their own API can answer with it. An
// *AppError already in the chain is returned as is; anything else becomes
// INTERNAL_ERROR.
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	o, ok := asOutcome(err)
	if !ok {
		return apperrors.Internal(err)
	}

	target, status := "upstream", 0
	if rc := o.responseContext(); rc != nil {
		target, status = redactURL(rc.url), rc.status
	} else {
		var ue *url.Error
		if errors.As(err, &ue) {
			target = redactURL(ue.URL)
		}
	}
	if target == "" {
		target = "upstream"
	}

	switch o.kind() {
	case KindAPI:
		return apperrors.UpstreamError(target, status, err)
	case KindDecode:
		return apperrors.UpstreamContract(target, err)
	case KindUnexpectedStatus:
		return apperrors.UnexpectedStatus(target, o.expectedStatus(), status).WithCause(err)
	case KindUnexpectedSuccess:
		return apperrors.UpstreamContract(target, err)
	case KindBuild:
		return apperrors.InvalidRequest(err)
	case KindExecute, KindRead:
		if isTimeout(err) {
			return apperrors.Timeout(target, err)
		}
		return apperrors.ConnectionFailed(target, err)
	default:
		return apperrors.Internal(err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// redactURL reduces raw to scheme, host and path. Query strings and user info
// may carry credentials and must not leave the client in errors or logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.User = nil
	u.RawQuery, u.ForceQuery = "", false
	u.Fragment, u.RawFragment = "", ""
	return u.String()
}

// redactTransport rewrites the URL of a *url.Error from the transport with
// redactURL. The cause is kept, so deadline and net errors still match.
func redactTransport(err error) error {
	ue, ok := err.(*url.Error)
	if !ok {
		return err
	}
	return &url.Error{Op: ue.Op, URL: redactURL(ue.URL), Err: ue.Err}
}

// spanError is the error a span records for err. Spans are exported, so an
// outcome with a response context is reduced to method, redacted URL, kind
// and status.
func spanError(err error) error {
	o, ok := asOutcome(err)
	if !ok || o.responseContext() == nil {
		return err
	}
	rc := o.responseContext()
	return fmt.Errorf("%s %s: %s (status %d)", rc.method, redactURL(rc.url), o.kind(), rc.status)
}
