// Package evalopt implements the evaluator-optimizer refinement loop.
//
// # Overview
//
// One request moves through a small state machine:
//
//	Generating -> Evaluating -> Accepted
//	                   |
//	                   +-> Generating (with feedback)
//
// The first generate round sends the raw request. Every later round sends a re-prompt
// carrying the original request, the previous candidate and the latest evaluator feedback.
// The loop stops when the evaluator answers "RATING: PASS" or when the iteration limit is
// reached. The final round is never evaluated; its candidate is accepted as-is.
//
// # Failure Policy
//
// Both stages go through the same [retry.Caller]. What exhaustion means differs per stage:
//
//   - Generation: fatal. Run returns a [*k8sagent.StageError] wrapping the last failure.
//   - Evaluation: not fatal. A Pass verdict is synthesized (see [evaluation.Skipped]), an
//     [k8sagent.EvaluationSkippedEvent] is fired, and the candidate is accepted.
//
// A canceled context is fatal for both stages.
//
// # Example
//
//	agent := evalopt.NewAgent(generator, evaluator).
//	    WithActions(podAction, nodeAction).
//	    WithLimits(k8sagent.DefaultLimits()).
//	    WithHooks(registry)
//
//	result, err := agent.Run(ctx, "list pods in kube-system")
package evalopt
