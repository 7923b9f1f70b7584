package models

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/xj90713/k8sagent"
)

// Evaluator implements k8sagent.Evaluator with a single model call. It never offers actions.
type Evaluator struct {
	model   k8sagent.Model
	options []llms.CallOption
}

// NewEvaluator creates an Evaluator for model.
func NewEvaluator(model k8sagent.Model) *Evaluator {
	return &Evaluator{model: model}
}

// WithCallOptions sets options passed on every model call.
func (e *Evaluator) WithCallOptions(opts ...llms.CallOption) *Evaluator {
	e.options = opts
	return e
}

// Evaluate implements k8sagent.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, prompt, systemInstructions string) (string, error) {
	resp, err := e.model.GenerateContent(ctx, buildMessages(systemInstructions, prompt), e.options...)
	if err != nil {
		return "", err
	}
	choice, err := firstChoice(resp)
	if err != nil {
		return "", err
	}
	return choice.Content, nil
}

var _ k8sagent.Evaluator = (*Evaluator)(nil)
