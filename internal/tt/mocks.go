package tt

import (
	"context"
	"errors"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/xj90713/k8sagent"
)

// -----------------------------------------------------------------------------
// Scripted steps
// -----------------------------------------------------------------------------

// step is one scripted capability outcome.
type step struct {
	text string
	err  error
}

// script hands out scripted steps in order. Once exhausted it repeats the fallback step.
type script struct {
	mu       sync.Mutex
	steps    []step
	fallback *step
	calls    int
}

func (s *script) next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	if idx < len(s.steps) {
		return s.steps[idx].text, s.steps[idx].err
	}
	if s.fallback != nil {
		return s.fallback.text, s.fallback.err
	}
	return "", errors.New("tt: no scripted response left")
}

func (s *script) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// -----------------------------------------------------------------------------
// MockGenerator - implements k8sagent.Generator
// -----------------------------------------------------------------------------

// GenerateCall captures the arguments of one Generate call.
type GenerateCall struct {
	Prompt             string
	SystemInstructions string
	Actions            []k8sagent.Action
}

// MockGenerator is a scripted k8sagent.Generator. It is safe for concurrent use.
type MockGenerator struct {
	script script

	mu    sync.Mutex
	calls []GenerateCall
}

// NewMockGenerator creates a MockGenerator with no scripted responses.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// AddResponse queues a successful response.
func (m *MockGenerator) AddResponse(text string) *MockGenerator {
	m.script.steps = append(m.script.steps, step{text: text})
	return m
}

// AddError queues a failed attempt.
func (m *MockGenerator) AddError(err error) *MockGenerator {
	m.script.steps = append(m.script.steps, step{err: err})
	return m
}

// AlwaysRespond sets the response used once the queue is empty.
func (m *MockGenerator) AlwaysRespond(text string) *MockGenerator {
	m.script.fallback = &step{text: text}
	return m
}

// AlwaysFail sets the failure used once the queue is empty.
func (m *MockGenerator) AlwaysFail(err error) *MockGenerator {
	m.script.fallback = &step{err: err}
	return m
}

// Generate implements k8sagent.Generator.
func (m *MockGenerator) Generate(
	_ context.Context,
	prompt, systemInstructions string,
	actions []k8sagent.Action,
) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCall{
		Prompt:             prompt,
		SystemInstructions: systemInstructions,
		Actions:            actions,
	})
	m.mu.Unlock()
	return m.script.next()
}

// CallCount returns the number of Generate calls, failed attempts included.
func (m *MockGenerator) CallCount() int {
	return m.script.count()
}

// Calls returns the captured calls in order.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GenerateCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// -----------------------------------------------------------------------------
// MockEvaluator - implements k8sagent.Evaluator
// -----------------------------------------------------------------------------

// EvaluateCall captures the arguments of one Evaluate call.
type EvaluateCall struct {
	Prompt             string
	SystemInstructions string
}

// MockEvaluator is a scripted k8sagent.Evaluator. It is safe for concurrent use.
type MockEvaluator struct {
	script script

	mu    sync.Mutex
	calls []EvaluateCall
}

// NewMockEvaluator creates a MockEvaluator with no scripted responses.
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{}
}

// AddResponse queues a successful evaluation.
func (m *MockEvaluator) AddResponse(text string) *MockEvaluator {
	m.script.steps = append(m.script.steps, step{text: text})
	return m
}

// AddError queues a failed attempt.
func (m *MockEvaluator) AddError(err error) *MockEvaluator {
	m.script.steps = append(m.script.steps, step{err: err})
	return m
}

// AlwaysRespond sets the evaluation used once the queue is empty.
func (m *MockEvaluator) AlwaysRespond(text string) *MockEvaluator {
	m.script.fallback = &step{text: text}
	return m
}

// AlwaysFail sets the failure used once the queue is empty.
func (m *MockEvaluator) AlwaysFail(err error) *MockEvaluator {
	m.script.fallback = &step{err: err}
	return m
}

// Evaluate implements k8sagent.Evaluator.
func (m *MockEvaluator) Evaluate(_ context.Context, prompt, systemInstructions string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, EvaluateCall{Prompt: prompt, SystemInstructions: systemInstructions})
	m.mu.Unlock()
	return m.script.next()
}

// CallCount returns the number of Evaluate calls, failed attempts included.
func (m *MockEvaluator) CallCount() int {
	return m.script.count()
}

// Calls returns the captured calls in order.
func (m *MockEvaluator) Calls() []EvaluateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EvaluateCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// -----------------------------------------------------------------------------
// MockLLM - implements llms.Model
// -----------------------------------------------------------------------------

// MockLLM is a scripted LangChainGo llms.Model. Each call pops one queued response or error.
type MockLLM struct {
	mu        sync.Mutex
	responses []*llms.ContentResponse
	errors    []error
	callCount int

	// CapturedMessages stores the messages passed to each GenerateContent call.
	CapturedMessages [][]llms.MessageContent

	// CapturedOptions stores the resolved call options of each GenerateContent call.
	CapturedOptions []llms.CallOptions
}

// NewMockLLM creates a MockLLM.
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// AddResponse queues a plain text response with the given token counts.
func (m *MockLLM) AddResponse(content string, inputTokens, outputTokens int) *MockLLM {
	return m.AddRawResponse(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content: content,
			GenerationInfo: map[string]any{
				"PromptTokens":     inputTokens,
				"CompletionTokens": outputTokens,
			},
		}},
	})
}

// AddToolCall queues a response asking for one action call.
func (m *MockLLM) AddToolCall(id, name, arguments string) *MockLLM {
	return m.AddRawResponse(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   id,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      name,
					Arguments: arguments,
				},
			}},
		}},
	})
}

// AddRawResponse queues a raw response. Use it for full control (e.g. empty Choices).
func (m *MockLLM) AddRawResponse(resp *llms.ContentResponse) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockLLM) AddError(err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// CallCount returns the number of GenerateContent calls.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// GenerateContent implements llms.Model.
func (m *MockLLM) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++

	captured := make([]llms.MessageContent, len(messages))
	copy(captured, messages)
	m.CapturedMessages = append(m.CapturedMessages, captured)

	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.CapturedOptions = append(m.CapturedOptions, opts)

	if idx >= len(m.responses) {
		return nil, errors.New("tt: no scripted LLM response left")
	}
	return m.responses[idx], m.errors[idx]
}

// Call implements llms.Model.
func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Compile-time checks.
var (
	_ k8sagent.Generator = (*MockGenerator)(nil)
	_ k8sagent.Evaluator = (*MockEvaluator)(nil)
	_ llms.Model         = (*MockLLM)(nil)
)
