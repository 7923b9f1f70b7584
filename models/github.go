package models

import (
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// GitHubModelsBaseURL is the base URL for the GitHub Models API.
	// The OpenAI-compatible chat completions endpoint is at
	// {baseURL}/chat/completions.
	GitHubModelsBaseURL = "https://models.github.ai/inference"
)

// githubHeaderDoer wraps an *http.Client and injects GitHub-specific headers into every
// request.
type githubHeaderDoer struct {
	base *http.Client
}

func (d *githubHeaderDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return d.base.Do(req)
}

// NewGitHubModel creates a Model backed by the GitHub Models API.
//
// The token must be a GitHub Personal Access Token (fine-grained) with the models:read
// permission. Model names use the publisher/model format, for example "openai/gpt-4.1".
// A nil client uses NewHTTPClient with default timeouts.
//
// Example:
//
//	model, err := models.NewGitHubModel(
//	    models.GHModelGPT41,
//	    os.Getenv("GITHUB_TOKEN"),
//	    models.NewHTTPClient(100*time.Second, 600*time.Second),
//	)
func NewGitHubModel(
	model string,
	token string,
	client *http.Client,
	opts ...openai.Option,
) (*LCGWrapper, error) {
	if token == "" {
		return nil, fmt.Errorf(
			"github token is required: " +
				"create a fine-grained PAT with models:read " +
				"at https://github.com/settings/personal-access-tokens/new",
		)
	}
	if client == nil {
		client = NewHTTPClient(0, 0)
	}

	baseOpts := []openai.Option{
		openai.WithBaseURL(GitHubModelsBaseURL),
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(&githubHeaderDoer{base: client}),
	}

	// Caller options come after so they can override defaults.
	allOpts := append(baseOpts, opts...)

	llm, err := openai.New(allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}

	return NewLCGWrapper(llm).WithModelName(model), nil
}
