package models

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/xj90713/k8sagent"
)

// LCGWrapper wraps an llms.Model and implements k8sagent.Model.
// It normalizes token usage across providers.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCGWrapper(llm).WithModelName("gpt-4o")
//
//	response, err := model.GenerateContent(ctx, messages)
type LCGWrapper struct {
	model     llms.Model
	modelName string
	clock     k8sagent.Clock
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model: model,
		clock: k8sagent.NewSystemClock(),
	}
}

// WithModelName sets the model name reported by ModelName.
// Returns the model for chaining.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// WithClock sets the clock used to time provider calls.
func (m *LCGWrapper) WithClock(clock k8sagent.Clock) *LCGWrapper {
	m.clock = clock
	return m
}

// ModelName returns the configured model name.
func (m *LCGWrapper) ModelName() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCGWrapper) Unwrap() llms.Model {
	return m.model
}

// GenerateContent implements k8sagent.Model.GenerateContent.
// Token usage is normalized across providers.
func (m *LCGWrapper) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*k8sagent.ContentResponse, error) {
	startTime := m.clock.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, messages, options...)
	duration := m.clock.Now().Sub(startTime)

	var response *k8sagent.ContentResponse
	if lcgResponse != nil {
		response = convertLCGResponse(lcgResponse, duration)
	}
	return response, err
}

// convertLCGResponse converts an llms.ContentResponse to k8sagent.ContentResponse with
// normalized tokens.
func convertLCGResponse(
	lcgResponse *llms.ContentResponse,
	duration time.Duration,
) *k8sagent.ContentResponse {
	response := &k8sagent.ContentResponse{
		Choices: make([]*k8sagent.ContentChoice, 0, len(lcgResponse.Choices)),
		Info:    &k8sagent.GenerationInfo{Duration: duration},
	}

	for _, choice := range lcgResponse.Choices {
		if choice == nil {
			continue
		}
		response.Choices = append(response.Choices, &k8sagent.ContentChoice{
			Content:    choice.Content,
			StopReason: choice.StopReason,
			ToolCalls:  choice.ToolCalls,
		})
	}

	// Token info lives on the first choice's GenerationInfo.
	if len(lcgResponse.Choices) > 0 && lcgResponse.Choices[0] != nil &&
		lcgResponse.Choices[0].GenerationInfo != nil {
		rawInfo := lcgResponse.Choices[0].GenerationInfo
		response.Info.InputTokens = extractInputTokens(rawInfo)
		response.Info.OutputTokens = extractOutputTokens(rawInfo)
		response.Info.TotalTokens = extractTotalTokens(
			rawInfo,
			response.Info.InputTokens,
			response.Info.OutputTokens,
		)
	}

	return response
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
// Handles different key names used by different providers.
func extractInputTokens(info map[string]any) int {
	// OpenAI / GitHub Models / Ollama
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	return getIntFromMap(info, "input_tokens")
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	return getIntFromMap(info, "output_tokens")
}

// extractTotalTokens extracts total token count or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	if v := getIntFromMap(info, "TotalTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// Compile-time check that LCGWrapper implements k8sagent.Model.
var _ k8sagent.Model = (*LCGWrapper)(nil)
