package k8sagent

import (
	"context"
)

// AgentLoop is responsible for:
//  1. Building the generation and evaluation prompts for a request.
//  2. Calling the capabilities (with retries) in strict sequence.
//  3. Deciding whether to refine the candidate again or stop.
//
// The executor calls [AgentLoop.Run] once per Invoke and normalizes whatever candidate it
// returns. A returned error is fatal for that request and is rendered as an error fragment.
type AgentLoop interface {
	Run(ctx context.Context, request string) (*LoopResult, error)
}

// LoopResult is the outcome of a successful loop run.
type LoopResult struct {
	// Candidate is the last candidate produced. It is the one that gets normalized.
	Candidate Candidate

	// Transcript is the per-request history of candidates and evaluations.
	Transcript *Transcript

	// Placeholder is true when no candidate was ever produced and Candidate carries the
	// fixed placeholder text instead.
	Placeholder bool
}

// Stage identifies which capability a call targets.
type Stage string

const (
	StageGeneration Stage = "generation"
	StageEvaluation Stage = "evaluation"
)
