package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/format"
	"github.com/xj90713/k8sagent/hooks"
)

const tracerName = "github.com/xj90713/k8sagent/executor"

// Executor is the single entry point of the pipeline. It runs an AgentLoop for one request
// and always returns HTML.
//
// The Executor is responsible for:
//   - Assigning a request id and opening the invoke span
//   - Running the AgentLoop once and recovering any panic escaping it
//   - Normalizing the accepted candidate, or rendering the error fragment on fatal failure
//   - Firing BeforeInvoke, AfterInvoke and Error events
//
// The Executor holds only read-only collaborators and is safe for concurrent use.
type Executor struct {
	loop   k8sagent.AgentLoop
	hooks  *hooks.Registry
	tracer trace.Tracer
	clock  k8sagent.Clock
}

// New creates an Executor for the given loop. Spans go to the global tracer provider.
func New(loop k8sagent.AgentLoop) *Executor {
	return &Executor{
		loop:   loop,
		hooks:  hooks.NewRegistry(),
		tracer: otel.Tracer(tracerName),
		clock:  k8sagent.NewSystemClock(),
	}
}

// WithHooks replaces the executor's hook registry with the provided one.
// Use this to share one registry between the executor and the loop:
//
//	registry := hooks.NewRegistry().Register(observability.NewLogHook(logger))
//	agent := evalopt.NewAgent(gen, eval).WithHooks(registry)
//	exec := executor.New(agent).WithHooks(registry)
func (e *Executor) WithHooks(h *hooks.Registry) *Executor {
	e.hooks = h
	return e
}

// RegisterHook adds a hook to the executor's existing registry.
func (e *Executor) RegisterHook(hook any) *Executor {
	e.hooks.Register(hook)
	return e
}

// WithTracer sets the tracer used for the invoke span.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	e.tracer = tracer
	return e
}

// WithClock sets the clock used to measure invoke durations.
func (e *Executor) WithClock(clock k8sagent.Clock) *Executor {
	e.clock = clock
	return e
}

// Invoke answers request with an HTML fragment. It never returns an error: fatal failures
// are rendered with format.ErrorFragment, and every result passes format.IsValid.
//
// The request id is taken from ctx (see k8sagent.WithRequestID) or generated.
func (e *Executor) Invoke(ctx context.Context, request string) string {
	requestID := k8sagent.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = k8sagent.WithRequestID(ctx, requestID)
	}

	ctx, span := e.tracer.Start(ctx, "k8sagent.invoke",
		trace.WithAttributes(
			attribute.String("k8sagent.request_id", requestID),
			attribute.Int("k8sagent.request_length", len(request)),
		),
	)
	defer span.End()

	start := e.clock.Now()
	e.hooks.FireBeforeInvoke(ctx, k8sagent.BeforeInvokeEvent{
		RequestID: requestID,
		Request:   request,
	})

	result, panicked, err := e.run(ctx, request)

	after := k8sagent.AfterInvokeEvent{RequestID: requestID}
	if err != nil {
		e.hooks.FireError(ctx, k8sagent.ErrorEvent{
			RequestID: requestID,
			Err:       err,
			Panic:     panicked,
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		after.Response = format.ErrorFragment(err)
		after.Err = err
	} else {
		after.Response = format.Normalize(result.Candidate.Text)
		after.Normalized = after.Response != result.Candidate.Text
		after.Iterations = result.Transcript.Len()
		after.Evaluations = result.Transcript.Evaluations()

		span.SetAttributes(
			attribute.Int("k8sagent.iterations", after.Iterations),
			attribute.Int("k8sagent.evaluations", after.Evaluations),
			attribute.Bool("k8sagent.normalized", after.Normalized),
			attribute.Bool("k8sagent.placeholder", result.Placeholder),
		)
		span.SetStatus(codes.Ok, "")
	}

	after.Duration = e.clock.Now().Sub(start)
	e.hooks.FireAfterInvoke(ctx, after)
	return after.Response
}

// run calls the loop, converting a panic into an error.
func (e *Executor) run(ctx context.Context, request string) (result *k8sagent.LoopResult, panicked any, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = r
			result = nil
			err = fmt.Errorf("agent loop panicked: %v", r)
		}
	}()

	result, err = e.loop.Run(ctx, request)
	if err == nil && result == nil {
		err = fmt.Errorf("agent loop returned no result")
	}
	return result, nil, err
}
