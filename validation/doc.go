// Package validation checks configuration structs before a client is built.
//
// Struct tags are evaluated with go-playground/validator; field names in the
// resulting messages follow the mapstructure tag so they match the keys a
// user wrote in their config file. Cross-field rules use the fluent Validator.
//
//	v := validation.New().
//		Required("auth.token", cfg.Token).
//		HeaderName("auth.header", cfg.Header)
//	if err := v.Validate(); err != nil { ... }
//
// Shape applies the same tags to decoded response bodies, so a body type can
// name the fields an upstream must send.
package validation
