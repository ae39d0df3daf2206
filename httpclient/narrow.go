package httpclient

import "errors"

// Narrow asserts that err is a structured API error answered with status
// expected, and returns its decoded body.
//
//   - nil err becomes KindUnexpectedSuccess without a context.
//   - An error that is not an *Error[E] is returned unchanged.
//   - A context whose status differs from expected becomes a new
//     KindUnexpectedStatus with the same context, whatever the original kind.
//   - A matching KindAPI error yields its body.
//   - Anything else is returned unchanged.
//
// Narrow never mutates err, and narrowing its own result with the same
// status gives an equal result.
func Narrow[E any](err error, expected int) (E, error) {
	var zero E
	if err == nil {
		return zero, unexpectedSuccess[E](nil)
	}

	var e *Error[E]
	if !errors.As(err, &e) {
		return zero, err
	}
	if e.ctx != nil && e.ctx.status != expected {
		return zero, unexpectedStatus[E](*e.ctx, expected)
	}
	if e.Kind == KindAPI {
		return e.Body, nil
	}
	return zero, err
}

// NarrowResult is Narrow over a whole outcome. A success becomes
// KindUnexpectedSuccess carrying the response context.
func NarrowResult[Ok, E any](resp *Response[Ok], err error, expected int) (E, error) {
	if err != nil {
		return Narrow[E](err, expected)
	}
	var zero E
	if resp == nil {
		return zero, unexpectedSuccess[E](nil)
	}
	rc := resp.Context
	return zero, unexpectedSuccess[E](&rc)
}
