package k8sagent

import (
	"errors"
	"fmt"
)

// Configuration and capability errors.
var (
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrEmptyResponse        = errors.New("model returned no choices")
	ErrUnknownAction        = errors.New("unknown action")
	ErrInvalidActionArgs    = errors.New("invalid action arguments")
	ErrActionRoundsExceeded = errors.New("action call rounds exceeded")
)

// StageError is a fatal capability failure: a stage ran out of attempts, or the request was
// canceled while the stage was running.
type StageError struct {
	Stage     Stage
	Iteration int
	Attempts  int
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s) in iteration %d: %v",
		e.Stage, e.Attempts, e.Iteration, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
