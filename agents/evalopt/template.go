package evalopt

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/xj90713/k8sagent"
)

//go:embed prompts/generator.txt
var generatorTemplateContent string

//go:embed prompts/evaluator.txt
var evaluatorInstructions string

// GeneratorTemplateData is passed to the generator system template.
type GeneratorTemplateData struct {
	// Actions are the actions offered to the generator on this request.
	Actions []k8sagent.Action
}

// RefineTemplateData is passed to the re-prompt template.
type RefineTemplateData struct {
	// Request is the original user request.
	Request string

	// Previous is the prior candidate text.
	Previous string

	// Feedback is the feedback from the most recent evaluation.
	Feedback string
}

// EvaluationTemplateData is passed to the evaluation prompt template.
type EvaluationTemplateData struct {
	Request   string
	Candidate string
}

// DefaultGeneratorTemplate renders the generator system instructions. It lists the available
// actions after the HTML output contract.
var DefaultGeneratorTemplate = template.Must(
	template.New("generator_system").Parse(generatorTemplateContent),
)

// DefaultEvaluatorInstructions returns the evaluator system instructions. They ask for the
// RATING/FEEDBACK answer format understood by the evaluation package.
func DefaultEvaluatorInstructions() string {
	return evaluatorInstructions
}

// DefaultRefineTemplate builds the prompt of every iteration after the first.
var DefaultRefineTemplate = template.Must(template.New("refine").Parse(
	"Original user request: {{.Request}}\n\n" +
		"Your previous response: {{.Previous}}\n\n" +
		"Feedback on your previous response: {{.Feedback}}\n\n" +
		"Please provide an improved response that addresses the feedback.",
))

// DefaultEvaluationTemplate builds the prompt sent to the evaluator.
var DefaultEvaluationTemplate = template.Must(template.New("evaluation").Parse(
	"User request: {{.Request}}\n\n" +
		"Response to evaluate: {{.Candidate}}\n\n" +
		"Evaluate if this response properly addresses the user's request.",
))

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
