// Package observability provides the hook sinks and process wiring for logs, metrics and
// traces.
//
// The pipeline never logs or records metrics itself. It fires events through a
// hooks.Registry, and the hooks in this package turn them into zap log lines, Prometheus
// series and OpenTelemetry span events:
//
//	logger, _ := observability.NewLogger("info", false)
//	registry := hooks.NewRegistry().
//	    Register(observability.NewLogHook(logger)).
//	    Register(observability.NewMetricsHook(prometheus.DefaultRegisterer)).
//	    Register(observability.NewTracingHook())
package observability
