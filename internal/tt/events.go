package tt

import (
	"context"
	"sync"

	"github.com/xj90713/k8sagent"
)

// RecordingHook implements every hook interface and records the events it receives in order.
// It is the captured-output double for the observability sink.
type RecordingHook struct {
	mu     sync.Mutex
	events []k8sagent.HookEvent
}

// NewRecordingHook creates an empty RecordingHook.
func NewRecordingHook() *RecordingHook {
	return &RecordingHook{}
}

func (h *RecordingHook) record(e k8sagent.HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

// Events returns every recorded event in order.
func (h *RecordingHook) Events() []k8sagent.HookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]k8sagent.HookEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Retries returns the recorded retry events.
func (h *RecordingHook) Retries() []k8sagent.RetryEvent {
	return eventsOf[k8sagent.RetryEvent](h)
}

// Skips returns the recorded evaluation-skipped events.
func (h *RecordingHook) Skips() []k8sagent.EvaluationSkippedEvent {
	return eventsOf[k8sagent.EvaluationSkippedEvent](h)
}

// Errors returns the recorded error events.
func (h *RecordingHook) Errors() []k8sagent.ErrorEvent {
	return eventsOf[k8sagent.ErrorEvent](h)
}

// Iterations returns the recorded after-iteration events.
func (h *RecordingHook) Iterations() []k8sagent.AfterIterationEvent {
	return eventsOf[k8sagent.AfterIterationEvent](h)
}

// Invocations returns the recorded after-invoke events.
func (h *RecordingHook) Invocations() []k8sagent.AfterInvokeEvent {
	return eventsOf[k8sagent.AfterInvokeEvent](h)
}

// Calls returns the recorded after-call events.
func (h *RecordingHook) Calls() []k8sagent.AfterCallEvent {
	return eventsOf[k8sagent.AfterCallEvent](h)
}

// ActionCalls returns the recorded after-action-call events.
func (h *RecordingHook) ActionCalls() []k8sagent.AfterActionCallEvent {
	return eventsOf[k8sagent.AfterActionCallEvent](h)
}

// CountEventTypes counts events by type name.
func (h *RecordingHook) CountEventTypes() map[string]int {
	counts := make(map[string]int)
	for _, event := range h.Events() {
		switch event.(type) {
		case k8sagent.BeforeInvokeEvent:
			counts["BeforeInvokeEvent"]++
		case k8sagent.AfterInvokeEvent:
			counts["AfterInvokeEvent"]++
		case k8sagent.BeforeIterationEvent:
			counts["BeforeIterationEvent"]++
		case k8sagent.AfterIterationEvent:
			counts["AfterIterationEvent"]++
		case k8sagent.BeforeCallEvent:
			counts["BeforeCallEvent"]++
		case k8sagent.AfterCallEvent:
			counts["AfterCallEvent"]++
		case k8sagent.RetryEvent:
			counts["RetryEvent"]++
		case k8sagent.EvaluationSkippedEvent:
			counts["EvaluationSkippedEvent"]++
		case k8sagent.BeforeActionCallEvent:
			counts["BeforeActionCallEvent"]++
		case k8sagent.AfterActionCallEvent:
			counts["AfterActionCallEvent"]++
		case k8sagent.ErrorEvent:
			counts["ErrorEvent"]++
		}
	}
	return counts
}

func eventsOf[T k8sagent.HookEvent](h *RecordingHook) []T {
	var out []T
	for _, e := range h.Events() {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func (h *RecordingHook) OnBeforeInvoke(_ context.Context, e k8sagent.BeforeInvokeEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterInvoke(_ context.Context, e k8sagent.AfterInvokeEvent) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeIteration(_ context.Context, e k8sagent.BeforeIterationEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterIteration(_ context.Context, e k8sagent.AfterIterationEvent) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeCall(_ context.Context, e k8sagent.BeforeCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterCall(_ context.Context, e k8sagent.AfterCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnRetry(_ context.Context, e k8sagent.RetryEvent) {
	h.record(e)
}

func (h *RecordingHook) OnEvaluationSkipped(_ context.Context, e k8sagent.EvaluationSkippedEvent) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeActionCall(_ context.Context, e k8sagent.BeforeActionCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterActionCall(_ context.Context, e k8sagent.AfterActionCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnError(_ context.Context, e k8sagent.ErrorEvent) {
	h.record(e)
}

var (
	_ k8sagent.BeforeInvokeHook      = (*RecordingHook)(nil)
	_ k8sagent.AfterInvokeHook       = (*RecordingHook)(nil)
	_ k8sagent.BeforeIterationHook   = (*RecordingHook)(nil)
	_ k8sagent.AfterIterationHook    = (*RecordingHook)(nil)
	_ k8sagent.BeforeCallHook        = (*RecordingHook)(nil)
	_ k8sagent.AfterCallHook         = (*RecordingHook)(nil)
	_ k8sagent.RetryHook             = (*RecordingHook)(nil)
	_ k8sagent.EvaluationSkippedHook = (*RecordingHook)(nil)
	_ k8sagent.BeforeActionCallHook  = (*RecordingHook)(nil)
	_ k8sagent.AfterActionCallHook   = (*RecordingHook)(nil)
	_ k8sagent.ErrorHook             = (*RecordingHook)(nil)
)
