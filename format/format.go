package format

import (
	"fmt"

	"github.com/kbukum/apiclient/validation"
)

// Common MIME types advertised by the built-in formats.
const (
	MIMEJSON = "application/json"
	MIMEXML  = "application/xml"
	MIMEYAML = "application/yaml"
)

// Format is a wire format for request and response bodies.
type Format interface {
	// Name identifies the format in errors and logs (e.g. "json").
	Name() string
	// Accept is the value of the Accept header sent with every request.
	Accept() string
	// ContentType is the value of the Content-Type header for requests with a payload.
	ContentType() string
	// Unmarshal parses data into v.
	Unmarshal(data []byte, v any) error
	// Marshal encodes v for a request payload.
	Marshal(v any) ([]byte, error)
}

// DecodeError reports that a body could not be parsed in a given format.
type DecodeError struct {
	// Format is the name of the format that rejected the body.
	Format string
	// Target is the Go type the body was decoded into.
	Target string
	// Err is the underlying parser error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("format: decode %s into %s: %v", e.Format, e.Target, e.Err)
}

// Unwrap returns the parser error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses text as T using f, then enforces T's `validate` tags so a
// body missing required fields is rejected rather than zero-filled. On
// failure it returns the zero T and a *DecodeError.
func Decode[T any](f Format, text string) (T, error) {
	var v T
	err := f.Unmarshal([]byte(text), &v)
	if err == nil {
		err = validation.Shape(v)
	}
	if err != nil {
		var zero T
		return zero, &DecodeError{
			Format: f.Name(),
			Target: fmt.Sprintf("%T", zero),
			Err:    err,
		}
	}
	return v, nil
}

// Encode marshals v with f, passing raw byte slices and strings through unchanged.
func Encode(f Format, v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	data, err := f.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("format: encode %s: %w", f.Name(), err)
	}
	return data, nil
}
