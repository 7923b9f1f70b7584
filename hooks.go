package k8sagent

import (
	"context"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks are the observability sink of the pipeline. The loop never writes to a console;
// it publishes events and lets registered hooks decide what to do with them. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the loop, the executor and the generator via WithHooks
//
// Example:
//
//	type RetryCounter struct{ n int }
//
//	func (h *RetryCounter) OnRetry(ctx context.Context, e k8sagent.RetryEvent) {
//	    h.n++
//	}
//
//	registry := hooks.NewRegistry()
//	registry.Register(&RetryCounter{})
//
// # Hook Execution Order
//
// Hooks are called in registration order, synchronously, on the request's goroutine.
// Hooks should be quick and must not block.
//
// # Error Handling
//
// Hooks do NOT return errors. A hook that panics while the loop runs is treated like any other
// unexpected failure: the executor recovers it and renders an error fragment. Invoke hooks run
// outside that boundary and must not panic.
//
// # Available Hooks
//
//   - Invoke lifecycle: [BeforeInvokeHook], [AfterInvokeHook]
//   - Iteration lifecycle: [BeforeIterationHook], [AfterIterationHook]
//   - Capability calls: [BeforeCallHook], [AfterCallHook], [RetryHook], [EvaluationSkippedHook]
//   - Action calls: [BeforeActionCallHook], [AfterActionCallHook]
//   - Error handling: [ErrorHook]
// -----------------------------------------------------------------------------

// BeforeInvokeHook is notified once when a request enters the executor.
type BeforeInvokeHook interface {
	OnBeforeInvoke(ctx context.Context, event BeforeInvokeEvent)
}

// AfterInvokeHook is notified once when the final response is ready. It is always called if
// BeforeInvoke was called, including when the response is an error fragment.
type AfterInvokeHook interface {
	OnAfterInvoke(ctx context.Context, event AfterInvokeEvent)
}

// BeforeIterationHook is notified before each generate round.
type BeforeIterationHook interface {
	OnBeforeIteration(ctx context.Context, event BeforeIterationEvent)
}

// AfterIterationHook is notified after each round that produced a candidate.
type AfterIterationHook interface {
	OnAfterIteration(ctx context.Context, event AfterIterationEvent)
}

// BeforeCallHook is notified before every capability attempt.
type BeforeCallHook interface {
	OnBeforeCall(ctx context.Context, event BeforeCallEvent)
}

// AfterCallHook is notified after every capability attempt, successful or not.
type AfterCallHook interface {
	OnAfterCall(ctx context.Context, event AfterCallEvent)
}

// RetryHook is notified when a failed attempt is about to be retried after a backoff wait.
type RetryHook interface {
	OnRetry(ctx context.Context, event RetryEvent)
}

// EvaluationSkippedHook is notified when evaluation was abandoned and a Pass was synthesized.
type EvaluationSkippedHook interface {
	OnEvaluationSkipped(ctx context.Context, event EvaluationSkippedEvent)
}

// BeforeActionCallHook is notified before an action requested by the model runs.
type BeforeActionCallHook interface {
	OnBeforeActionCall(ctx context.Context, event BeforeActionCallEvent)
}

// AfterActionCallHook is notified after an action requested by the model ran.
type AfterActionCallHook interface {
	OnAfterActionCall(ctx context.Context, event AfterActionCallEvent)
}

// ErrorHook is notified when a failure crosses the loop boundary.
type ErrorHook interface {
	OnError(ctx context.Context, event ErrorEvent)
}
