// Package tracing provides OpenTelemetry tracing integration.
//
// The package ships HTTP middleware that extracts W3C trace context from
// incoming requests, opens a server span per request, and echoes the trace
// ID back in the X-Trace-Id response header. Pipeline stages create child
// spans through GetTracer.
//
// Exporter wiring (OTLP, Jaeger) is left to the deployment; without a
// configured exporter the spans are no-ops.
//
// Example usage:
//
//	import "glbaguni/internal/observability/tracing"
//
//	func processQuery(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "news.process_query")
//	    defer span.End()
//	    // ... run the pipeline ...
//	}
package tracing
