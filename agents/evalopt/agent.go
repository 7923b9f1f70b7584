package evalopt

import (
	"context"
	"fmt"
	"text/template"

	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/evaluation"
	"github.com/xj90713/k8sagent/hooks"
	"github.com/xj90713/k8sagent/retry"
)

// PlaceholderText is returned as the candidate when no generate round ever ran.
const PlaceholderText = "Failed to generate a response"

// Agent is the evaluator-optimizer loop. It is configured once and is safe for concurrent
// use: every Run keeps its transcript and attempt counters on its own stack.
type Agent struct {
	generator k8sagent.Generator
	evaluator k8sagent.Evaluator
	actions   []k8sagent.Action
	limits    k8sagent.Limits
	clock     k8sagent.Clock
	hooks     *hooks.Registry

	generatorTemplate     *template.Template
	generatorInstructions string
	evaluatorInstructions string
	refineTemplate        *template.Template
	evaluationTemplate    *template.Template
}

// NewAgent creates an Agent with default settings.
// Defaults:
//   - Limits: k8sagent.DefaultLimits()
//   - Clock: k8sagent.NewSystemClock()
//   - Generator instructions: DefaultGeneratorTemplate
//   - Evaluator instructions: DefaultEvaluatorInstructions()
func NewAgent(generator k8sagent.Generator, evaluator k8sagent.Evaluator) *Agent {
	return &Agent{
		generator:             generator,
		evaluator:             evaluator,
		limits:                k8sagent.DefaultLimits(),
		clock:                 k8sagent.NewSystemClock(),
		generatorTemplate:     DefaultGeneratorTemplate,
		evaluatorInstructions: DefaultEvaluatorInstructions(),
		refineTemplate:        DefaultRefineTemplate,
		evaluationTemplate:    DefaultEvaluationTemplate,
	}
}

// WithActions sets the actions offered to the generator.
func (a *Agent) WithActions(actions ...k8sagent.Action) *Agent {
	a.actions = actions
	return a
}

// WithLimits sets the iteration and retry limits.
func (a *Agent) WithLimits(limits k8sagent.Limits) *Agent {
	a.limits = limits
	return a
}

// WithClock sets the clock used for backoff waits and durations.
func (a *Agent) WithClock(clock k8sagent.Clock) *Agent {
	a.clock = clock
	return a
}

// WithHooks sets the registry that receives loop, call and retry events.
func (a *Agent) WithHooks(h *hooks.Registry) *Agent {
	a.hooks = h
	return a
}

// WithGeneratorInstructions replaces the generator system instructions with fixed text.
func (a *Agent) WithGeneratorInstructions(instructions string) *Agent {
	a.generatorInstructions = instructions
	return a
}

// WithGeneratorTemplate replaces the generator system template. The template receives
// GeneratorTemplateData.
func (a *Agent) WithGeneratorTemplate(tmpl *template.Template) *Agent {
	a.generatorTemplate = tmpl
	a.generatorInstructions = ""
	return a
}

// WithEvaluatorInstructions replaces the evaluator system instructions.
func (a *Agent) WithEvaluatorInstructions(instructions string) *Agent {
	a.evaluatorInstructions = instructions
	return a
}

// Limits returns the configured limits.
func (a *Agent) Limits() k8sagent.Limits {
	return a.limits
}

// Run refines a response to request until it is accepted or the iteration limit is reached.
func (a *Agent) Run(ctx context.Context, request string) (*k8sagent.LoopResult, error) {
	systemInstructions, err := a.generatorSystemInstructions()
	if err != nil {
		return nil, fmt.Errorf("render generator instructions: %w", err)
	}

	caller := retry.NewCaller(retry.PolicyFromLimits(a.limits)).
		WithClock(a.clock).
		WithHooks(a.hooks)
	transcript := k8sagent.NewTranscript()

	var current *k8sagent.Candidate
	for iteration := 1; iteration <= a.limits.MaxIterations; iteration++ {
		start := a.clock.Now()

		prompt, err := a.generationPrompt(request, current, transcript)
		if err != nil {
			return nil, fmt.Errorf("build generation prompt: %w", err)
		}
		a.hooks.FireBeforeIteration(ctx, k8sagent.BeforeIterationEvent{
			Iteration: iteration,
			Prompt:    prompt,
		})

		res := caller.Call(ctx, k8sagent.StageGeneration, iteration,
			func(ctx context.Context) (string, error) {
				return a.generator.Generate(ctx, prompt, systemInstructions, a.actions)
			})
		if res.Kind != retry.KindSucceeded {
			return nil, &k8sagent.StageError{
				Stage:     k8sagent.StageGeneration,
				Iteration: iteration,
				Attempts:  res.Attempts,
				Err:       res.Err,
			}
		}

		candidate := k8sagent.Candidate{Iteration: iteration, Text: res.Text}
		current = &candidate

		if iteration == a.limits.MaxIterations {
			transcript.Append(candidate, nil)
			a.hooks.FireAfterIteration(ctx, k8sagent.AfterIterationEvent{
				Iteration: iteration,
				Candidate: candidate,
				Accepted:  true,
				Duration:  a.clock.Now().Sub(start),
			})
			break
		}

		ev, err := a.evaluate(ctx, caller, request, candidate)
		if err != nil {
			return nil, err
		}
		transcript.Append(candidate, &ev)
		a.hooks.FireAfterIteration(ctx, k8sagent.AfterIterationEvent{
			Iteration:  iteration,
			Candidate:  candidate,
			Evaluation: &ev,
			Accepted:   ev.Passed(),
			Duration:   a.clock.Now().Sub(start),
		})
		if ev.Passed() {
			break
		}
	}

	if current == nil {
		return &k8sagent.LoopResult{
			Candidate:   k8sagent.Candidate{Text: PlaceholderText},
			Transcript:  transcript,
			Placeholder: true,
		}, nil
	}
	return &k8sagent.LoopResult{
		Candidate:  *current,
		Transcript: transcript,
	}, nil
}

// evaluate grades candidate. Exhausted attempts and permanent evaluator failures yield a
// synthetic Pass; cancellation is fatal.
func (a *Agent) evaluate(
	ctx context.Context,
	caller *retry.Caller,
	request string,
	candidate k8sagent.Candidate,
) (k8sagent.Evaluation, error) {
	prompt, err := ExecuteTemplate(a.evaluationTemplate, EvaluationTemplateData{
		Request:   request,
		Candidate: candidate.Text,
	})
	if err != nil {
		return k8sagent.Evaluation{}, fmt.Errorf("build evaluation prompt: %w", err)
	}

	res := caller.Call(ctx, k8sagent.StageEvaluation, candidate.Iteration,
		func(ctx context.Context) (string, error) {
			return a.evaluator.Evaluate(ctx, prompt, a.evaluatorInstructions)
		})

	switch {
	case res.Kind == retry.KindSucceeded:
		return evaluation.Extract(res.Text), nil
	case (res.Kind == retry.KindExhausted || res.Kind == retry.KindPermanent) && ctx.Err() == nil:
		a.hooks.FireEvaluationSkipped(ctx, k8sagent.EvaluationSkippedEvent{
			Iteration: candidate.Iteration,
			Attempts:  res.Attempts,
			Err:       res.Err,
		})
		return evaluation.Skipped(), nil
	default:
		cause := res.Err
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = ctxErr
		}
		return k8sagent.Evaluation{}, &k8sagent.StageError{
			Stage:     k8sagent.StageEvaluation,
			Iteration: candidate.Iteration,
			Attempts:  res.Attempts,
			Err:       cause,
		}
	}
}

func (a *Agent) generationPrompt(
	request string,
	previous *k8sagent.Candidate,
	transcript *k8sagent.Transcript,
) (string, error) {
	if previous == nil {
		return request, nil
	}
	feedback, _ := transcript.LatestFeedback()
	return ExecuteTemplate(a.refineTemplate, RefineTemplateData{
		Request:  request,
		Previous: previous.Text,
		Feedback: feedback,
	})
}

func (a *Agent) generatorSystemInstructions() (string, error) {
	if a.generatorInstructions != "" {
		return a.generatorInstructions, nil
	}
	return ExecuteTemplate(a.generatorTemplate, GeneratorTemplateData{Actions: a.actions})
}

// Compile-time check that Agent implements k8sagent.AgentLoop.
var _ k8sagent.AgentLoop = (*Agent)(nil)
