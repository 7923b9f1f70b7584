package k8sagent

import (
	"context"
)

// Action represents a single operation the generator may call while drafting a response,
// for example inspecting or managing a cluster resource.
//
// Responsibility design:
//   - Action: accept decoded arguments, execute logic, return text for the model
//   - Generator: advertise actions to the model, validate arguments against the
//     parameter schema, call actions, feed results back into the conversation
type Action interface {
	// Name returns the action's identifier used in tool calls.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// ParameterSchema returns the JSON Schema for the action's arguments.
	// Returns nil if the action takes no arguments.
	ParameterSchema() map[string]any

	// Call executes the action with already validated arguments.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// ActionFunc is a convenience type for creating actions from functions.
type ActionFunc struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewActionFunc creates a new ActionFunc.
func NewActionFunc(
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *ActionFunc {
	return &ActionFunc{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the action's identifier.
func (a *ActionFunc) Name() string {
	return a.name
}

// Description returns a human-readable description for the model.
func (a *ActionFunc) Description() string {
	return a.description
}

// ParameterSchema returns the JSON Schema for the action's arguments.
func (a *ActionFunc) ParameterSchema() map[string]any {
	return a.schema
}

// Call executes the wrapped function.
func (a *ActionFunc) Call(ctx context.Context, args map[string]any) (string, error) {
	return a.fn(ctx, args)
}

var _ Action = (*ActionFunc)(nil)
