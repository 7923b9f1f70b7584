// Package hooks provides the registry that dispatches pipeline events to observers.
//
// Hooks allow you to observe the refinement loop without the loop knowing who is listening.
// Each hook interface corresponds to a specific event type - implement only the interfaces
// you need.
//
// # Hook Interfaces
//
// Invoke lifecycle hooks:
//   - [k8sagent.BeforeInvokeHook] - Called once when a request arrives
//   - [k8sagent.AfterInvokeHook] - Called once with the final response
//   - [k8sagent.ErrorHook] - Called when a failure crosses the loop boundary
//
// Loop hooks:
//   - [k8sagent.BeforeIterationHook] - Called before each generate round
//   - [k8sagent.AfterIterationHook] - Called after each round with its candidate and verdict
//
// Capability call hooks:
//   - [k8sagent.BeforeCallHook], [k8sagent.AfterCallHook] - Every generation/evaluation attempt
//   - [k8sagent.RetryHook] - A failed attempt is about to be retried
//   - [k8sagent.EvaluationSkippedHook] - Evaluation gave up and a Pass was synthesized
//
// Action call hooks:
//   - [k8sagent.BeforeActionCallHook], [k8sagent.AfterActionCallHook]
//
// # Creating a Hook
//
//	type SkipCounter struct{ skipped atomic.Int64 }
//
//	func (h *SkipCounter) OnEvaluationSkipped(
//	    ctx context.Context,
//	    event k8sagent.EvaluationSkippedEvent,
//	) {
//	    h.skipped.Add(1)
//	}
//
//	// Compile-time check
//	var _ k8sagent.EvaluationSkippedHook = (*SkipCounter)(nil)
//
// # Example
//
// See observability/logging.go for a hook that implements every interface.
package hooks
