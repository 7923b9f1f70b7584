package models

// GitHubModel is a model ID string for the GitHub Models API, in "publisher/model-name"
// form. The list covers models that follow the HTML output contract well; any other ID from
// the catalog works too:
//
//	curl -H "Authorization: Bearer $GITHUB_TOKEN" \
//	  https://models.github.ai/catalog/models
type GitHubModel = string

const (
	GHModelGPT41     GitHubModel = "openai/gpt-4.1"
	GHModelGPT41Mini GitHubModel = "openai/gpt-4.1-mini"
	GHModelGPT4o     GitHubModel = "openai/gpt-4o"
	GHModelGPT4oMini GitHubModel = "openai/gpt-4o-mini"
	GHModelGPT5Mini  GitHubModel = "openai/gpt-5-mini"

	GHModelLlama33_70B GitHubModel = "meta-llama/llama-3.3-70b-instruct"
	GHModelDeepSeekV3  GitHubModel = "deepseek/deepseek-v3-0324"
	GHModelMistralMed  GitHubModel = "mistralai/mistral-medium-3"
)
