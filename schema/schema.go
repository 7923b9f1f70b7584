// Package schema enforces JSON Schemas for action arguments.
//
// Action parameter schemas are plain maps, usually read from the service configuration:
//
//	params := map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	        "namespace": map[string]any{"type": "string"},
//	        "tail":      map[string]any{"type": "integer", "minimum": 1},
//	    },
//	    "required": []any{"namespace"},
//	}
//	compiled, err := schema.Compile(params)
//
// Configuration loading compiles every schema so a broken one fails at startup. The
// generator decodes the arguments the model sent with [DecodeArguments] and rejects them with
// a [*ValidationError] before the action runs.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema kept in both raw form (sent to the model) and compiled form
// (used for validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the schema as sent to the model.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate checks args against the schema. A nil Schema accepts anything.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(toValidatable(args)); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// toValidatable converts a nil map to an empty object so "required" is reported instead of
// a type mismatch.
func toValidatable(args map[string]any) any {
	if args == nil {
		return map[string]any{}
	}
	return args
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map. A nil map yields a nil *Schema, which accepts any
// arguments.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("action.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile("action.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// DecodeArguments decodes the JSON arguments of a tool call. Blank input decodes to an empty
// map; anything other than a JSON object is an error.
func DecodeArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// EmptyObject is the parameter schema of an action without arguments.
func EmptyObject() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}
