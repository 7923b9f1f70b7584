package observability

import (
	"context"
	"fmt"

	"github.com/xj90713/k8sagent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Version is reported as the service version on exported spans.
var Version = "dev"

// InitTracer installs a global tracer provider that exports spans over OTLP/gRPC to endpoint.
// Returns a shutdown function that flushes pending spans; call it on service termination.
func InitTracer(ctx context.Context, serviceName, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// TracingHook records loop activity as events on the span found in the event context, which
// is the executor's invoke span. Without a recording span it does nothing.
type TracingHook struct{}

// NewTracingHook creates a TracingHook.
func NewTracingHook() *TracingHook {
	return &TracingHook{}
}

func (h *TracingHook) OnAfterIteration(ctx context.Context, e k8sagent.AfterIterationEvent) {
	attrs := []attribute.KeyValue{
		attribute.Int("k8sagent.iteration", e.Iteration),
		attribute.Bool("k8sagent.accepted", e.Accepted),
		attribute.Int("k8sagent.candidate_length", len(e.Candidate.Text)),
	}
	if e.Evaluation != nil {
		attrs = append(attrs,
			attribute.String("k8sagent.verdict", string(e.Evaluation.Verdict)),
			attribute.Bool("k8sagent.evaluation_skipped", e.Evaluation.Skipped))
	}
	trace.SpanFromContext(ctx).AddEvent("iteration", trace.WithAttributes(attrs...))
}

func (h *TracingHook) OnRetry(ctx context.Context, e k8sagent.RetryEvent) {
	trace.SpanFromContext(ctx).AddEvent("retry", trace.WithAttributes(
		attribute.String("k8sagent.stage", string(e.Stage)),
		attribute.Int("k8sagent.iteration", e.Iteration),
		attribute.Int("k8sagent.attempt", e.Attempt),
		attribute.Int64("k8sagent.delay_ms", e.Delay.Milliseconds()),
		attribute.String("k8sagent.error", errString(e.Err)),
	))
}

func (h *TracingHook) OnEvaluationSkipped(ctx context.Context, e k8sagent.EvaluationSkippedEvent) {
	trace.SpanFromContext(ctx).AddEvent("evaluation_skipped", trace.WithAttributes(
		attribute.Int("k8sagent.iteration", e.Iteration),
		attribute.Int("k8sagent.attempts", e.Attempts),
		attribute.String("k8sagent.error", errString(e.Err)),
	))
}

func (h *TracingHook) OnAfterActionCall(ctx context.Context, e k8sagent.AfterActionCallEvent) {
	trace.SpanFromContext(ctx).AddEvent("action_call", trace.WithAttributes(
		attribute.String("k8sagent.action", e.ActionName),
		attribute.Int64("k8sagent.duration_ms", e.Duration.Milliseconds()),
		attribute.String("k8sagent.error", errString(e.Error)),
	))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	_ k8sagent.AfterIterationHook    = (*TracingHook)(nil)
	_ k8sagent.RetryHook             = (*TracingHook)(nil)
	_ k8sagent.EvaluationSkippedHook = (*TracingHook)(nil)
	_ k8sagent.AfterActionCallHook   = (*TracingHook)(nil)
)
