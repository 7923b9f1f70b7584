package evalopt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/evaluation"
	"github.com/xj90713/k8sagent/hooks"
	"github.com/xj90713/k8sagent/internal/tt"
)

const (
	pass        = "RATING: PASS\nFEEDBACK: looks good"
	needsWork   = "RATING: NEEDS_IMPROVEMENT\nFEEDBACK: add namespaces"
	needsMore   = "RATING: NEEDS_IMPROVEMENT\nFEEDBACK: use a table"
	testRequest = "list pods in kube-system"
)

func newTestAgent(gen *tt.MockGenerator, eval *tt.MockEvaluator) (*Agent, *k8sagent.MockClock, *tt.RecordingHook) {
	clock := k8sagent.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	rec := tt.NewRecordingHook()
	agent := NewAgent(gen, eval).
		WithClock(clock).
		WithHooks(hooks.NewRegistry().Register(rec))
	return agent, clock, rec
}

func TestAgent_Run(t *testing.T) {
	type input struct {
		generations []string
		evaluations []string
	}

	type expected struct {
		text        string
		iteration   int
		genCalls    int
		evalCalls   int
		entries     int
		lastEvalNil bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "pass on first round",
			input: input{
				generations: []string{"<div>v1</div>"},
				evaluations: []string{pass},
			},
			expected: expected{
				text:      "<div>v1</div>",
				iteration: 1,
				genCalls:  1,
				evalCalls: 1,
				entries:   1,
			},
		},
		{
			name: "pass on second round",
			input: input{
				generations: []string{"v1", "v2"},
				evaluations: []string{needsWork, pass},
			},
			expected: expected{
				text:      "v2",
				iteration: 2,
				genCalls:  2,
				evalCalls: 2,
				entries:   2,
			},
		},
		{
			name: "never passes stops at the limit",
			input: input{
				generations: []string{"v1", "v2", "v3"},
				evaluations: []string{needsWork, needsMore},
			},
			expected: expected{
				text:        "v3",
				iteration:   3,
				genCalls:    3,
				evalCalls:   2,
				entries:     3,
				lastEvalNil: true,
			},
		},
		{
			name: "malformed evaluation counts as needs improvement",
			input: input{
				generations: []string{"v1", "v2"},
				evaluations: []string{"I think it is fine", pass},
			},
			expected: expected{
				text:      "v2",
				iteration: 2,
				genCalls:  2,
				evalCalls: 2,
				entries:   2,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := tt.NewMockGenerator()
			for _, g := range tc.input.generations {
				gen.AddResponse(g)
			}
			eval := tt.NewMockEvaluator()
			for _, e := range tc.input.evaluations {
				eval.AddResponse(e)
			}
			agent, clock, _ := newTestAgent(gen, eval)

			result, err := agent.Run(context.Background(), testRequest)
			require.NoError(t, err)

			assert.Equal(t, tc.expected.text, result.Candidate.Text)
			assert.Equal(t, tc.expected.iteration, result.Candidate.Iteration)
			assert.False(t, result.Placeholder)
			assert.Equal(t, tc.expected.genCalls, gen.CallCount())
			assert.Equal(t, tc.expected.evalCalls, eval.CallCount())
			assert.Empty(t, clock.Sleeps())

			entries := result.Transcript.Entries()
			require.Len(t, entries, tc.expected.entries)
			if tc.expected.lastEvalNil {
				assert.Nil(t, entries[len(entries)-1].Evaluation)
			} else {
				assert.NotNil(t, entries[len(entries)-1].Evaluation)
			}
		})
	}
}

func TestAgent_Prompts(t *testing.T) {
	gen := tt.NewMockGenerator().AddResponse("v1").AddResponse("v2").AddResponse("v3")
	eval := tt.NewMockEvaluator().AddResponse(needsWork).AddResponse(needsMore)
	podAction := k8sagent.NewActionFunc("list_pods", "List pods in a namespace", nil,
		func(context.Context, map[string]any) (string, error) { return "[]", nil })

	agent, _, _ := newTestAgent(gen, eval)
	agent.WithActions(podAction)

	_, err := agent.Run(context.Background(), testRequest)
	require.NoError(t, err)

	genCalls := gen.Calls()
	require.Len(t, genCalls, 3)

	assert.Equal(t, testRequest, genCalls[0].Prompt)
	assert.Equal(t,
		"Original user request: list pods in kube-system\n\n"+
			"Your previous response: v1\n\n"+
			"Feedback on your previous response: add namespaces\n\n"+
			"Please provide an improved response that addresses the feedback.",
		genCalls[1].Prompt)
	assert.Contains(t, genCalls[2].Prompt, "Your previous response: v2")
	assert.Contains(t, genCalls[2].Prompt, "Feedback on your previous response: use a table")

	for _, c := range genCalls {
		assert.Contains(t, c.SystemInstructions, "CRITICAL FORMATTING REQUIREMENT")
		assert.Contains(t, c.SystemInstructions, "- list_pods: List pods in a namespace")
		require.Len(t, c.Actions, 1)
		assert.Equal(t, "list_pods", c.Actions[0].Name())
	}

	evalCalls := eval.Calls()
	require.Len(t, evalCalls, 2)
	assert.Equal(t,
		"User request: list pods in kube-system\n\n"+
			"Response to evaluate: v1\n\n"+
			"Evaluate if this response properly addresses the user's request.",
		evalCalls[0].Prompt)
	assert.Equal(t, DefaultEvaluatorInstructions(), evalCalls[0].SystemInstructions)
	assert.Contains(t, evalCalls[0].SystemInstructions, "RATING: [PASS or NEEDS_IMPROVEMENT]")
}

func TestAgent_CustomInstructions(t *testing.T) {
	gen := tt.NewMockGenerator().AddResponse("v1")
	eval := tt.NewMockEvaluator().AddResponse(pass)

	agent, _, _ := newTestAgent(gen, eval)
	agent.WithGeneratorInstructions("be brief").WithEvaluatorInstructions("grade it")

	_, err := agent.Run(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "be brief", gen.Calls()[0].SystemInstructions)
	assert.Equal(t, "grade it", eval.Calls()[0].SystemInstructions)
}

func TestAgent_GenerationExhaustionIsFatal(t *testing.T) {
	type input struct {
		setup func(gen *tt.MockGenerator, eval *tt.MockEvaluator)
	}

	type expected struct {
		iteration int
		genCalls  int
		evalCalls int
		sleeps    []time.Duration
	}

	boom := errors.New("connection timed out")

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "first round",
			input: input{setup: func(gen *tt.MockGenerator, _ *tt.MockEvaluator) {
				gen.AlwaysFail(boom)
			}},
			expected: expected{
				iteration: 1,
				genCalls:  3,
				evalCalls: 0,
				sleeps:    []time.Duration{2 * time.Second, 4 * time.Second},
			},
		},
		{
			name: "second round",
			input: input{setup: func(gen *tt.MockGenerator, eval *tt.MockEvaluator) {
				gen.AddResponse("v1").AlwaysFail(boom)
				eval.AddResponse(needsWork)
			}},
			expected: expected{
				iteration: 2,
				genCalls:  4,
				evalCalls: 1,
				sleeps:    []time.Duration{2 * time.Second, 4 * time.Second},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := tt.NewMockGenerator()
			eval := tt.NewMockEvaluator()
			tc.input.setup(gen, eval)
			agent, clock, rec := newTestAgent(gen, eval)

			result, err := agent.Run(context.Background(), testRequest)
			require.Error(t, err)
			assert.Nil(t, result)

			var stageErr *k8sagent.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, k8sagent.StageGeneration, stageErr.Stage)
			assert.Equal(t, tc.expected.iteration, stageErr.Iteration)
			assert.Equal(t, 3, stageErr.Attempts)
			assert.ErrorIs(t, err, boom)

			assert.Equal(t, tc.expected.genCalls, gen.CallCount())
			assert.Equal(t, tc.expected.evalCalls, eval.CallCount())
			assert.Equal(t, tc.expected.sleeps, clock.Sleeps())
			assert.Len(t, rec.Retries(), 2)
		})
	}
}

func TestAgent_EvaluationExhaustionSynthesizesPass(t *testing.T) {
	boom := errors.New("evaluator unavailable")
	gen := tt.NewMockGenerator().AddResponse("v1")
	eval := tt.NewMockEvaluator().AlwaysFail(boom)
	agent, clock, rec := newTestAgent(gen, eval)

	result, err := agent.Run(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "v1", result.Candidate.Text)
	assert.Equal(t, 1, gen.CallCount())
	assert.Equal(t, 3, eval.CallCount())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, clock.Sleeps())

	entries := result.Transcript.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Evaluation)
	assert.True(t, entries[0].Evaluation.Passed())
	assert.True(t, entries[0].Evaluation.Skipped)
	assert.Equal(t, evaluation.SkippedFeedback, entries[0].Evaluation.Feedback)

	skips := rec.Skips()
	require.Len(t, skips, 1)
	assert.Equal(t, 1, skips[0].Iteration)
	assert.Equal(t, 3, skips[0].Attempts)
	assert.ErrorIs(t, skips[0].Err, boom)
}

func TestAgent_EvaluationRecoversAfterRetry(t *testing.T) {
	gen := tt.NewMockGenerator().AddResponse("v1")
	eval := tt.NewMockEvaluator().AddError(errors.New("blip")).AddResponse(pass)
	agent, clock, rec := newTestAgent(gen, eval)

	result, err := agent.Run(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "v1", result.Candidate.Text)
	assert.Equal(t, []time.Duration{2 * time.Second}, clock.Sleeps())
	assert.Empty(t, rec.Skips())
	assert.False(t, result.Transcript.Entries()[0].Evaluation.Skipped)
}

func TestAgent_PermanentFailuresAreNotRetried(t *testing.T) {
	misconfigured := fmt.Errorf("%w: duplicate action name %q", k8sagent.ErrInvalidConfig, "list_pods")

	t.Run("generation", func(t *testing.T) {
		gen := tt.NewMockGenerator().AlwaysFail(misconfigured)
		eval := tt.NewMockEvaluator()
		agent, clock, rec := newTestAgent(gen, eval)

		result, err := agent.Run(context.Background(), testRequest)
		require.Error(t, err)
		assert.Nil(t, result)

		var stageErr *k8sagent.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, k8sagent.StageGeneration, stageErr.Stage)
		assert.Equal(t, 1, stageErr.Attempts)
		assert.ErrorIs(t, err, k8sagent.ErrInvalidConfig)

		assert.Equal(t, 1, gen.CallCount())
		assert.Zero(t, eval.CallCount())
		assert.Empty(t, clock.Sleeps())
		assert.Empty(t, rec.Retries())
	})

	t.Run("evaluation", func(t *testing.T) {
		gen := tt.NewMockGenerator().AddResponse("v1")
		eval := tt.NewMockEvaluator().AlwaysFail(misconfigured)
		agent, clock, rec := newTestAgent(gen, eval)

		result, err := agent.Run(context.Background(), testRequest)
		require.NoError(t, err)

		assert.Equal(t, "v1", result.Candidate.Text)
		assert.Equal(t, 1, eval.CallCount())
		assert.Empty(t, clock.Sleeps())
		assert.Empty(t, rec.Retries())

		skips := rec.Skips()
		require.Len(t, skips, 1)
		assert.Equal(t, 1, skips[0].Attempts)
		assert.ErrorIs(t, skips[0].Err, k8sagent.ErrInvalidConfig)
	})
}

func TestAgent_ZeroIterationsYieldsPlaceholder(t *testing.T) {
	gen := tt.NewMockGenerator()
	eval := tt.NewMockEvaluator()
	agent, _, _ := newTestAgent(gen, eval)
	agent.WithLimits(k8sagent.Limits{MaxIterations: 0, MaxAttempts: 3, BaseDelay: time.Second})

	result, err := agent.Run(context.Background(), testRequest)
	require.NoError(t, err)

	assert.True(t, result.Placeholder)
	assert.Equal(t, PlaceholderText, result.Candidate.Text)
	assert.Equal(t, 0, result.Transcript.Len())
	assert.Equal(t, 0, gen.CallCount())
	assert.Equal(t, 0, eval.CallCount())
}

func TestAgent_CanceledContextIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := tt.NewMockGenerator().AlwaysFail(errors.New("aborted"))
	eval := tt.NewMockEvaluator()
	agent, clock, _ := newTestAgent(gen, eval)

	_, err := agent.Run(ctx, testRequest)
	require.Error(t, err)

	var stageErr *k8sagent.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, 1, stageErr.Attempts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.CallCount())
	assert.Empty(t, clock.Sleeps())
}

func TestAgent_CanceledDuringEvaluationIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := tt.NewMockGenerator().AddResponse("v1")
	eval := tt.NewMockEvaluator().AddError(errors.New("slow"))
	agent, _, rec := newTestAgent(gen, eval)
	agent.WithHooks(hooks.NewRegistry().Register(rec).Register(&cancelOnRetry{cancel: cancel}))

	_, err := agent.Run(ctx, testRequest)
	require.Error(t, err)

	var stageErr *k8sagent.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, k8sagent.StageEvaluation, stageErr.Stage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Skips())
}

type cancelOnRetry struct {
	cancel context.CancelFunc
}

func (c *cancelOnRetry) OnRetry(_ context.Context, _ k8sagent.RetryEvent) {
	c.cancel()
}

func TestAgent_IterationEvents(t *testing.T) {
	gen := tt.NewMockGenerator().AddResponse("v1").AddResponse("v2").AddResponse("v3")
	eval := tt.NewMockEvaluator().AddResponse(needsWork).AddResponse(needsMore)
	agent, _, rec := newTestAgent(gen, eval)

	_, err := agent.Run(context.Background(), testRequest)
	require.NoError(t, err)

	counts := rec.CountEventTypes()
	assert.Equal(t, 3, counts["BeforeIterationEvent"])
	assert.Equal(t, 3, counts["AfterIterationEvent"])
	assert.Equal(t, 5, counts["BeforeCallEvent"])
	assert.Equal(t, 5, counts["AfterCallEvent"])
	assert.Zero(t, counts["RetryEvent"])

	iterations := rec.Iterations()
	require.Len(t, iterations, 3)
	assert.False(t, iterations[0].Accepted)
	assert.False(t, iterations[1].Accepted)
	assert.True(t, iterations[2].Accepted)
	assert.Nil(t, iterations[2].Evaluation)
}

func TestAgent_ConcurrentRunsAreIndependent(t *testing.T) {
	gen := tt.NewMockGenerator().AlwaysRespond("<div>ok</div>")
	eval := tt.NewMockEvaluator().AlwaysRespond(pass)
	agent, _, _ := newTestAgent(gen, eval)

	const runs = 16
	var wg sync.WaitGroup
	results := make([]*k8sagent.LoopResult, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = agent.Run(context.Background(), testRequest)
		}(i)
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 1, results[i].Transcript.Len())
	}
	assert.Equal(t, runs, gen.CallCount())
	assert.Equal(t, runs, eval.CallCount())
}

func TestDefaultGeneratorTemplate_NoActions(t *testing.T) {
	out, err := ExecuteTemplate(DefaultGeneratorTemplate, GeneratorTemplateData{})
	require.NoError(t, err)

	assert.NotContains(t, out, "Available Actions")
	assert.Contains(t, out, "Remember: Security and stability are paramount.")
}
