// Package logger wraps zerolog with the handful of conventions the API
// client relies on: a service tag, component-scoped child loggers, map based
// fields and a named registry so packages can fetch a logger by name.
//
//	log := logger.Get("httpclient")
//	log.Debug("classified", logger.Fields(logger.FieldMethod, "GET", logger.FieldStatus, 200))
package logger
