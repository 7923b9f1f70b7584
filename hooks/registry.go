package hooks

import (
	"context"

	"github.com/xj90713/k8sagent"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// # Overview
//
// Registry is the observability sink injected into the pipeline. It:
//   - Stores registered hooks in order
//   - Dispatches events to hooks that implement the relevant interface
//
// Hooks can implement any combination of hook interfaces - they only receive
// events for the interfaces they implement.
//
// # Creating and Using
//
//	registry := hooks.NewRegistry()
//	registry.Register(observability.NewLogHook(logger))
//	registry.Register(observability.NewMetricsHook(prometheus.DefaultRegisterer))
//
//	agent := evalopt.NewAgent(gen, eval).WithHooks(registry)
//	exec := executor.New(agent).WithHooks(registry)
//
// # Nil Registry
//
// All Fire methods are safe to call on a nil *Registry, so components can hold an optional
// registry without checking it at every call site.
//
// # Thread Safety
//
// Register all hooks before serving requests. After that the registry is read-only and may be
// shared by concurrent requests; hooks themselves must be safe for concurrent use.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry. The hook can implement any combination
// of hook interfaces (BeforeInvokeHook, RetryHook, etc.).
//
// Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// FireBeforeInvoke dispatches a BeforeInvokeEvent.
func (r *Registry) FireBeforeInvoke(ctx context.Context, event k8sagent.BeforeInvokeEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.BeforeInvokeHook); ok {
			hook.OnBeforeInvoke(ctx, event)
		}
	}
}

// FireAfterInvoke dispatches an AfterInvokeEvent.
func (r *Registry) FireAfterInvoke(ctx context.Context, event k8sagent.AfterInvokeEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.AfterInvokeHook); ok {
			hook.OnAfterInvoke(ctx, event)
		}
	}
}

// FireBeforeIteration dispatches a BeforeIterationEvent.
func (r *Registry) FireBeforeIteration(ctx context.Context, event k8sagent.BeforeIterationEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.BeforeIterationHook); ok {
			hook.OnBeforeIteration(ctx, event)
		}
	}
}

// FireAfterIteration dispatches an AfterIterationEvent.
func (r *Registry) FireAfterIteration(ctx context.Context, event k8sagent.AfterIterationEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.AfterIterationHook); ok {
			hook.OnAfterIteration(ctx, event)
		}
	}
}

// FireBeforeCall dispatches a BeforeCallEvent.
func (r *Registry) FireBeforeCall(ctx context.Context, event k8sagent.BeforeCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.BeforeCallHook); ok {
			hook.OnBeforeCall(ctx, event)
		}
	}
}

// FireAfterCall dispatches an AfterCallEvent.
func (r *Registry) FireAfterCall(ctx context.Context, event k8sagent.AfterCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.AfterCallHook); ok {
			hook.OnAfterCall(ctx, event)
		}
	}
}

// FireRetry dispatches a RetryEvent.
func (r *Registry) FireRetry(ctx context.Context, event k8sagent.RetryEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.RetryHook); ok {
			hook.OnRetry(ctx, event)
		}
	}
}

// FireEvaluationSkipped dispatches an EvaluationSkippedEvent.
func (r *Registry) FireEvaluationSkipped(ctx context.Context, event k8sagent.EvaluationSkippedEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.EvaluationSkippedHook); ok {
			hook.OnEvaluationSkipped(ctx, event)
		}
	}
}

// FireBeforeActionCall dispatches a BeforeActionCallEvent.
func (r *Registry) FireBeforeActionCall(ctx context.Context, event k8sagent.BeforeActionCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.BeforeActionCallHook); ok {
			hook.OnBeforeActionCall(ctx, event)
		}
	}
}

// FireAfterActionCall dispatches an AfterActionCallEvent.
func (r *Registry) FireAfterActionCall(ctx context.Context, event k8sagent.AfterActionCallEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.AfterActionCallHook); ok {
			hook.OnAfterActionCall(ctx, event)
		}
	}
}

// FireError dispatches an ErrorEvent.
// This is informational only; errors from hooks are not propagated.
func (r *Registry) FireError(ctx context.Context, event k8sagent.ErrorEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(k8sagent.ErrorHook); ok {
			hook.OnError(ctx, event)
		}
	}
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.hooks)
}

// Clear removes all registered hooks.
func (r *Registry) Clear() {
	r.hooks = make([]any, 0)
}
