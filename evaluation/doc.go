// Package evaluation turns raw evaluator output into a structured [k8sagent.Evaluation].
//
// # Evaluator Output Format
//
// The evaluator is instructed to answer in this shape:
//
//	RATING: PASS | NEEDS_IMPROVEMENT
//	FEEDBACK: free-form notes for the generator
//
// Extraction is deliberately forgiving. The verdict is Pass only when the exact token
// "RATING: PASS" appears anywhere in the text. Everything else, including empty or
// malformed output, is treated as NeedsImprovement so the loop keeps refining.
//
// # Synthetic Evaluations
//
// When the evaluator cannot be reached after every retry, the loop does not fail the
// request. It calls [Skipped] to build a Pass verdict that carries an explanatory note
// and has Skipped set, so the candidate is accepted as-is.
package evaluation
