package k8sagent

import "time"

// -----------------------------------------------------------------------------
// Hook Event Interface
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// -----------------------------------------------------------------------------
// Invoke Events
// -----------------------------------------------------------------------------

// BeforeInvokeEvent is emitted once when a request enters the executor.
type BeforeInvokeEvent struct {
	// RequestID identifies the request in every later event's context.
	RequestID string

	// Request is the raw user request.
	Request string
}

func (BeforeInvokeEvent) hookEvent() {}

// AfterInvokeEvent is emitted once when the executor has produced the final response.
type AfterInvokeEvent struct {
	RequestID string

	// Response is the final HTML returned to the caller.
	Response string

	// Iterations is how many candidates were generated (0 on fatal failure).
	Iterations int

	// Evaluations is how many of those candidates were graded, synthetic passes included.
	// The final candidate is not graded when the iteration limit is reached.
	Evaluations int

	// Normalized is true when the last candidate had to be transformed and wrapped.
	Normalized bool

	// Err is the fatal error rendered as an error fragment (nil on success).
	Err error

	// Duration is how long the whole request took.
	Duration time.Duration
}

func (AfterInvokeEvent) hookEvent() {}

// ErrorEvent is emitted when a failure crosses the loop boundary, including recovered panics.
type ErrorEvent struct {
	RequestID string

	// Err is the error that occurred.
	Err error

	// Panic is the recovered value when the loop panicked (nil otherwise).
	Panic any
}

func (ErrorEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Iteration Events
// -----------------------------------------------------------------------------

// BeforeIterationEvent is emitted before each generate round.
type BeforeIterationEvent struct {
	// Iteration is the current iteration number (1-indexed).
	Iteration int

	// Prompt is the generation prompt built for this round.
	Prompt string
}

func (BeforeIterationEvent) hookEvent() {}

// AfterIterationEvent is emitted after each round that produced a candidate.
type AfterIterationEvent struct {
	// Iteration is the current iteration number (1-indexed).
	Iteration int

	// Candidate is the candidate produced this round.
	Candidate Candidate

	// Evaluation is nil for the final iteration, which is never evaluated.
	Evaluation *Evaluation

	// Accepted is true when the loop stops after this round.
	Accepted bool

	// Duration is how long this iteration took.
	Duration time.Duration
}

func (AfterIterationEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Capability Call Events
// -----------------------------------------------------------------------------

// BeforeCallEvent is emitted before each attempt of a capability call.
type BeforeCallEvent struct {
	Stage     Stage
	Iteration int

	// Attempt is the 1-indexed attempt number.
	Attempt int
}

func (BeforeCallEvent) hookEvent() {}

// AfterCallEvent is emitted after each attempt of a capability call.
type AfterCallEvent struct {
	Stage     Stage
	Iteration int
	Attempt   int

	// Response is the capability output (empty on error).
	Response string

	// Duration is how long the attempt took.
	Duration time.Duration

	// Error is any error that occurred (nil if successful).
	Error error
}

func (AfterCallEvent) hookEvent() {}

// RetryEvent is emitted when an attempt failed and the caller is about to wait and retry.
type RetryEvent struct {
	Stage       Stage
	Iteration   int
	Attempt     int
	MaxAttempts int

	// Delay is how long the caller will block before the next attempt.
	Delay time.Duration

	// Err is the failure of the attempt that is being retried.
	Err error
}

func (RetryEvent) hookEvent() {}

// EvaluationSkippedEvent is emitted when the evaluator exhausted its attempts and a Pass
// verdict was synthesized so the loop could continue.
type EvaluationSkippedEvent struct {
	Iteration int
	Attempts  int

	// Err is the last evaluator failure.
	Err error
}

func (EvaluationSkippedEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Action Call Events
// -----------------------------------------------------------------------------

// BeforeActionCallEvent is emitted before an action requested by the model runs.
type BeforeActionCallEvent struct {
	// ActionName is the name of the action being called.
	ActionName string

	// Args contains the decoded arguments.
	Args map[string]any
}

func (BeforeActionCallEvent) hookEvent() {}

// AfterActionCallEvent is emitted after an action requested by the model ran (or was rejected).
type AfterActionCallEvent struct {
	ActionName string
	Args       map[string]any

	// Output is the action result handed back to the model (empty if error occurred).
	Output string

	// Duration is how long the action call took.
	Duration time.Duration

	// Error is any error that occurred (nil if successful).
	Error error
}

func (AfterActionCallEvent) hookEvent() {}
