package models

import (
	"context"
	"fmt"
	"slices"

	"github.com/tmc/langchaingo/llms"
	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/hooks"
	"github.com/xj90713/k8sagent/schema"
)

// DefaultMaxActionRounds bounds how many times one Generate call lets the model call actions
// before it must answer.
const DefaultMaxActionRounds = 8

// Generator implements k8sagent.Generator on top of a k8sagent.Model.
//
// Actions are advertised as tools. When the model asks for action calls, each call's
// arguments are decoded, validated against the action's parameter schema, and the action
// runs; the results are fed back and the model is called again. Rejected or failed calls are
// reported to the model as "Error: ..." results so it can recover.
//
//	gen := models.NewGenerator(model).
//	    WithHooks(registry).
//	    WithMaxActionRounds(4)
type Generator struct {
	model     k8sagent.Model
	hooks     *hooks.Registry
	maxRounds int
	options   []llms.CallOption
	clock     k8sagent.Clock
}

// NewGenerator creates a Generator for model.
func NewGenerator(model k8sagent.Model) *Generator {
	return &Generator{
		model:     model,
		maxRounds: DefaultMaxActionRounds,
		clock:     k8sagent.NewSystemClock(),
	}
}

// WithHooks sets the registry that receives action call events.
func (g *Generator) WithHooks(h *hooks.Registry) *Generator {
	g.hooks = h
	return g
}

// WithClock sets the clock used to time action calls.
func (g *Generator) WithClock(clock k8sagent.Clock) *Generator {
	g.clock = clock
	return g
}

// WithMaxActionRounds sets the action round limit.
func (g *Generator) WithMaxActionRounds(n int) *Generator {
	g.maxRounds = n
	return g
}

// WithCallOptions sets options passed on every model call (e.g. llms.WithTemperature).
func (g *Generator) WithCallOptions(opts ...llms.CallOption) *Generator {
	g.options = opts
	return g
}

// Generate implements k8sagent.Generator.
func (g *Generator) Generate(
	ctx context.Context,
	prompt, systemInstructions string,
	actions []k8sagent.Action,
) (string, error) {
	set, err := newActionSet(actions)
	if err != nil {
		return "", err
	}

	opts := g.options
	if tools := set.tools(); len(tools) > 0 {
		opts = append(slices.Clone(opts), llms.WithTools(tools))
	}
	messages := buildMessages(systemInstructions, prompt)

	for round := 0; ; round++ {
		resp, err := g.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return "", err
		}
		choice, err := firstChoice(resp)
		if err != nil {
			return "", err
		}
		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}
		if round >= g.maxRounds {
			return "", fmt.Errorf("%w: limit is %d", k8sagent.ErrActionRoundsExceeded, g.maxRounds)
		}

		messages = append(messages, assistantMessage(choice))
		for _, call := range choice.ToolCalls {
			messages = append(messages, g.runAction(ctx, set, call))
		}
	}
}

// runAction executes one tool call and returns the tool message reporting its result.
func (g *Generator) runAction(ctx context.Context, set *actionSet, call llms.ToolCall) llms.MessageContent {
	var name, rawArgs string
	if call.FunctionCall != nil {
		name = call.FunctionCall.Name
		rawArgs = call.FunctionCall.Arguments
	}

	args, decodeErr := schema.DecodeArguments(rawArgs)
	g.hooks.FireBeforeActionCall(ctx, k8sagent.BeforeActionCallEvent{
		ActionName: name,
		Args:       args,
	})

	start := g.clock.Now()
	output, err := set.call(ctx, name, args, decodeErr)
	g.hooks.FireAfterActionCall(ctx, k8sagent.AfterActionCallEvent{
		ActionName: name,
		Args:       args,
		Output:     output,
		Duration:   g.clock.Now().Sub(start),
		Error:      err,
	})

	content := output
	if err != nil {
		content = "Error: " + err.Error()
	}
	return llms.MessageContent{
		Role: llms.ChatMessageTypeTool,
		Parts: []llms.ContentPart{
			llms.ToolCallResponse{ToolCallID: call.ID, Name: name, Content: content},
		},
	}
}

// actionSet is the per-request lookup of actions and their compiled schemas.
type actionSet struct {
	ordered []boundAction
	byName  map[string]boundAction
}

type boundAction struct {
	action k8sagent.Action
	schema *schema.Schema
}

func newActionSet(actions []k8sagent.Action) (*actionSet, error) {
	set := &actionSet{byName: make(map[string]boundAction, len(actions))}
	for _, a := range actions {
		name := a.Name()
		if _, dup := set.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate action %q", k8sagent.ErrInvalidConfig, name)
		}
		compiled, err := schema.Compile(a.ParameterSchema())
		if err != nil {
			return nil, fmt.Errorf("%w: action %q: %w", k8sagent.ErrInvalidConfig, name, err)
		}
		bound := boundAction{action: a, schema: compiled}
		set.ordered = append(set.ordered, bound)
		set.byName[name] = bound
	}
	return set, nil
}

func (s *actionSet) tools() []llms.Tool {
	tools := make([]llms.Tool, 0, len(s.ordered))
	for _, b := range s.ordered {
		params := b.action.ParameterSchema()
		if params == nil {
			params = schema.EmptyObject()
		}
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        b.action.Name(),
				Description: b.action.Description(),
				Parameters:  params,
			},
		})
	}
	return tools
}

func (s *actionSet) call(ctx context.Context, name string, args map[string]any, decodeErr error) (string, error) {
	bound, ok := s.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", k8sagent.ErrUnknownAction, name)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: %w", k8sagent.ErrInvalidActionArgs, decodeErr)
	}
	if err := bound.schema.Validate(args); err != nil {
		return "", fmt.Errorf("%w: %w", k8sagent.ErrInvalidActionArgs, err)
	}
	return bound.action.Call(ctx, args)
}

func buildMessages(systemInstructions, prompt string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, 2)
	if systemInstructions != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemInstructions))
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
}

func assistantMessage(choice *k8sagent.ContentChoice) llms.MessageContent {
	parts := make([]llms.ContentPart, 0, len(choice.ToolCalls)+1)
	if choice.Content != "" {
		parts = append(parts, llms.TextContent{Text: choice.Content})
	}
	for _, call := range choice.ToolCalls {
		parts = append(parts, call)
	}
	return llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts}
}

func firstChoice(resp *k8sagent.ContentResponse) (*k8sagent.ContentChoice, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, k8sagent.ErrEmptyResponse
	}
	return resp.Choices[0], nil
}

// Compile-time check that Generator implements k8sagent.Generator.
var _ k8sagent.Generator = (*Generator)(nil)
