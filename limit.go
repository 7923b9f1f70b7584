package k8sagent

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxIterations is the generate/evaluate round ceiling.
	DefaultMaxIterations = 3

	// DefaultMaxAttempts is the per-call attempt ceiling shared by both stages.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the backoff base. The wait after attempt n is DefaultBaseDelay * 2^n.
	DefaultBaseDelay = 1000 * time.Millisecond
)

// Limits bounds a single Invoke call.
//
// Limits are passed to the loop at construction and are read-only afterwards, so one value can
// be shared by any number of concurrent requests.
//
//	limits := k8sagent.Limits{MaxIterations: 3, MaxAttempts: 3, BaseDelay: time.Second}
//	agent := evalopt.NewAgent(gen, eval).WithLimits(limits)
type Limits struct {
	// MaxIterations is the number of generate rounds. The last round is never evaluated,
	// so the evaluator runs at most MaxIterations-1 times.
	MaxIterations int

	// MaxAttempts is how many times a single capability call is tried before giving up.
	MaxAttempts int

	// BaseDelay is the backoff base delay.
	BaseDelay time.Duration
}

// DefaultLimits returns the design values: 3 iterations, 3 attempts, 1000ms base delay.
func DefaultLimits() Limits {
	return Limits{
		MaxIterations: DefaultMaxIterations,
		MaxAttempts:   DefaultMaxAttempts,
		BaseDelay:     DefaultBaseDelay,
	}
}

// Validate reports whether the limits can drive a loop.
func (l Limits) Validate() error {
	if l.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidConfig, l.MaxIterations)
	}
	if l.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, l.MaxAttempts)
	}
	if l.BaseDelay < 0 {
		return fmt.Errorf("%w: base delay must not be negative, got %v", ErrInvalidConfig, l.BaseDelay)
	}
	return nil
}
