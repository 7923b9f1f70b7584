// Package retry wraps a capability call with bounded retries and exponential backoff.
//
// The wrapper never decides what an exhausted call means. It returns an explicit [Result] whose
// [Kind] tells the caller whether the call succeeded, ran out of attempts, or was abandoned;
// the refinement loop then applies its own per-stage policy (fatal for generation, synthetic
// pass for evaluation).
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/hooks"
)

// Policy is the backoff policy shared by every stage.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first one.
	MaxAttempts int

	// BaseDelay is multiplied by 2^attempt to get the wait after a failed attempt.
	BaseDelay time.Duration
}

// PolicyFromLimits builds the policy for the given limits.
func PolicyFromLimits(l k8sagent.Limits) Policy {
	return Policy{MaxAttempts: l.MaxAttempts, BaseDelay: l.BaseDelay}
}

// Delay returns BaseDelay × 2^attempt for attempt ≥ 1. Delays that would overflow saturate at
// the largest representable duration.
//
// With the default 1000ms base: attempt 1 → 2s, attempt 2 → 4s, attempt 3 → 8s.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt >= 62 || p.BaseDelay > time.Duration(math.MaxInt64>>uint(attempt)) {
		return time.Duration(math.MaxInt64)
	}
	return p.BaseDelay << uint(attempt)
}

// Kind classifies how a call ended.
type Kind int

const (
	// KindSucceeded means one of the attempts returned without error.
	KindSucceeded Kind = iota

	// KindExhausted means every attempt failed. Result.Err is the last failure.
	KindExhausted

	// KindCanceled means the context ended before the call could succeed.
	KindCanceled

	// KindPermanent means an attempt failed with an error that retrying cannot fix.
	// Result.Err is that failure.
	KindPermanent
)

func (k Kind) String() string {
	switch k {
	case KindSucceeded:
		return "succeeded"
	case KindExhausted:
		return "exhausted"
	case KindCanceled:
		return "canceled"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Result is the outcome of Caller.Call.
type Result struct {
	// Text is the capability output. Only meaningful for KindSucceeded.
	Text string

	// Attempts is how many attempts were made.
	Attempts int

	Kind Kind

	// Err is the last attempt's failure, or the context error for KindCanceled.
	Err error
}

// PermanentError marks a failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so Caller.Call stops after the current attempt. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err should end a call without further attempts: it was wrapped
// with Permanent, or it is a configuration error.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm) || errors.Is(err, k8sagent.ErrInvalidConfig)
}

// Func is one attempt of a capability call.
type Func func(ctx context.Context) (string, error)

// Caller runs capability calls under a Policy. A Caller holds no per-call state and is safe for
// concurrent use; the attempt counter lives on the stack of each Call.
type Caller struct {
	policy Policy
	clock  k8sagent.Clock
	hooks  *hooks.Registry
}

// NewCaller creates a Caller using the system clock.
func NewCaller(policy Policy) *Caller {
	return &Caller{
		policy: policy,
		clock:  k8sagent.NewSystemClock(),
	}
}

// WithClock replaces the clock used for backoff waits.
func (c *Caller) WithClock(clock k8sagent.Clock) *Caller {
	c.clock = clock
	return c
}

// WithHooks sets the registry that receives call and retry events.
func (c *Caller) WithHooks(h *hooks.Registry) *Caller {
	c.hooks = h
	return c
}

// Call runs fn until it succeeds or MaxAttempts is reached. Between attempts it blocks for
// Policy.Delay(attempt). Call never returns an error directly; inspect Result.Kind.
func (c *Caller) Call(ctx context.Context, stage k8sagent.Stage, iteration int, fn Func) Result {
	maxAttempts := c.policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		c.hooks.FireBeforeCall(ctx, k8sagent.BeforeCallEvent{
			Stage:     stage,
			Iteration: iteration,
			Attempt:   attempt,
		})

		start := c.clock.Now()
		text, err := fn(ctx)
		c.hooks.FireAfterCall(ctx, k8sagent.AfterCallEvent{
			Stage:     stage,
			Iteration: iteration,
			Attempt:   attempt,
			Response:  text,
			Duration:  c.clock.Now().Sub(start),
			Error:     err,
		})

		if err == nil {
			return Result{Text: text, Attempts: attempt, Kind: KindSucceeded}
		}
		lastErr = err

		if IsPermanent(err) {
			return Result{Attempts: attempt, Kind: KindPermanent, Err: err}
		}
		if attempt >= maxAttempts {
			return Result{Attempts: attempt, Kind: KindExhausted, Err: lastErr}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Attempts: attempt, Kind: KindCanceled, Err: ctxErr}
		}

		delay := c.policy.Delay(attempt)
		c.hooks.FireRetry(ctx, k8sagent.RetryEvent{
			Stage:       stage,
			Iteration:   iteration,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
			Delay:       delay,
			Err:         err,
		})
		if sleepErr := c.clock.Sleep(ctx, delay); sleepErr != nil {
			return Result{Attempts: attempt, Kind: KindCanceled, Err: sleepErr}
		}
	}
}
