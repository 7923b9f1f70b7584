package models

import (
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultOpenAIModel is used when no model name is configured.
const DefaultOpenAIModel = "gpt-4o"

// NewOpenAIModel creates a Model for any OpenAI-compatible chat completions endpoint.
// An empty baseURL uses the OpenAI API; an empty model uses DefaultOpenAIModel. A nil client
// uses NewHTTPClient with default timeouts.
//
// Example:
//
//	model, err := models.NewOpenAIModel(
//	    "gpt-4o",
//	    os.Getenv("OPENAI_API_KEY"),
//	    "",
//	    models.NewHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout),
//	)
func NewOpenAIModel(
	model string,
	token string,
	baseURL string,
	client *http.Client,
	opts ...openai.Option,
) (*LCGWrapper, error) {
	if token == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if client == nil {
		client = NewHTTPClient(0, 0)
	}

	baseOpts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(client),
	}
	if baseURL != "" {
		baseOpts = append(baseOpts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return NewLCGWrapper(llm).WithModelName(model), nil
}
