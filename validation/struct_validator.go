package validation

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/apiclient/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(tagName)
		_ = validate.RegisterValidation("baseurl", isBaseURL)
		_ = validate.RegisterValidation("headername", func(fl validator.FieldLevel) bool {
			return validHeaderName(fl.Field().String())
		})
	})
	return validate
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"mapstructure", "yaml", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnakeCase(fld.Name)
}

// isBaseURL accepts absolute http(s) URLs with a host and without query or
// fragment, since paths get appended to them.
func isBaseURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.RawQuery == "" && u.Fragment == ""
}

// Validate validates a struct using `validate` tags. The returned error is an
// *errors.AppError with code INVALID_CONFIG and a "fields" detail.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.InvalidConfig("validation failed").WithCause(err)
	}

	v := New()
	for _, e := range validationErrors {
		v.AddError(fieldPath(e), formatValidationError(e))
	}
	return v.Validate()
}

// ShapeError lists the fields of a decoded value that broke its `validate` tags.
type ShapeError struct {
	Type   string
	Fields []FieldError
}

func (e *ShapeError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s does not match: %s", e.Type, strings.Join(msgs, "; "))
}

// Shape checks a decoded value against its `validate` tags. Pointers are
// followed; nil pointers, non-struct values and untagged structs pass.
func Shape(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := getValidator().Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return err
	}
	fields := make([]FieldError, len(ve))
	for i, e := range ve {
		fields[i] = FieldError{Field: fieldPath(e), Message: formatValidationError(e)}
	}
	return &ShapeError{Type: rv.Type().String(), Fields: fields}
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read like config keys ("auth.token").
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "url", "baseurl":
		return "must be an absolute http(s) URL without query or fragment"
	case "oneof":
		return "must be one of: " + e.Param()
	case "headername":
		return "must be a valid HTTP header name"
	case "file":
		return "must point to an existing file"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
