package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/hooks"
	"github.com/xj90713/k8sagent/internal/tt"
)

func TestPolicy_Delay(t *testing.T) {
	type input struct {
		base    time.Duration
		attempt int
	}

	type expected struct {
		delay time.Duration
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "first retry doubles the base",
			input:    input{base: time.Second, attempt: 1},
			expected: expected{delay: 2 * time.Second},
		},
		{
			name:     "second retry quadruples the base",
			input:    input{base: time.Second, attempt: 2},
			expected: expected{delay: 4 * time.Second},
		},
		{
			name:     "third retry",
			input:    input{base: time.Second, attempt: 3},
			expected: expected{delay: 8 * time.Second},
		},
		{
			name:     "attempt below one is clamped",
			input:    input{base: 100 * time.Millisecond, attempt: 0},
			expected: expected{delay: 200 * time.Millisecond},
		},
		{
			name:     "zero base never waits",
			input:    input{base: 0, attempt: 2},
			expected: expected{delay: 0},
		},
		{
			name:     "huge attempt saturates",
			input:    input{base: time.Second, attempt: 80},
			expected: expected{delay: time.Duration(math.MaxInt64)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Policy{MaxAttempts: 3, BaseDelay: tc.input.base}
			assert.Equal(t, tc.expected.delay, p.Delay(tc.input.attempt))
		})
	}
}

func TestPolicyFromLimits(t *testing.T) {
	p := PolicyFromLimits(k8sagent.DefaultLimits())
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BaseDelay)
}

func TestCaller_Call(t *testing.T) {
	errTransient := errors.New("connection reset")

	type input struct {
		outcomes []error
	}

	type expected struct {
		kind     Kind
		attempts int
		text     string
		err      error
		sleeps   []time.Duration
		retries  int
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:  "first attempt succeeds",
			input: input{outcomes: []error{nil}},
			expected: expected{
				kind:     KindSucceeded,
				attempts: 1,
				text:     "ok-1",
			},
		},
		{
			name:  "succeeds on the third attempt",
			input: input{outcomes: []error{errTransient, errTransient, nil}},
			expected: expected{
				kind:     KindSucceeded,
				attempts: 3,
				text:     "ok-3",
				sleeps:   []time.Duration{2 * time.Second, 4 * time.Second},
				retries:  2,
			},
		},
		{
			name:  "exhausts after three failures",
			input: input{outcomes: []error{errTransient, errTransient, errTransient}},
			expected: expected{
				kind:     KindExhausted,
				attempts: 3,
				err:      errTransient,
				sleeps:   []time.Duration{2 * time.Second, 4 * time.Second},
				retries:  2,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := k8sagent.NewMockClock(time.Unix(0, 0))
			rec := tt.NewRecordingHook()
			caller := NewCaller(Policy{MaxAttempts: 3, BaseDelay: time.Second}).
				WithClock(clock).
				WithHooks(hooks.NewRegistry().Register(rec))

			calls := 0
			res := caller.Call(context.Background(), k8sagent.StageGeneration, 1,
				func(context.Context) (string, error) {
					err := tc.input.outcomes[calls]
					calls++
					if err != nil {
						return "", err
					}
					return "ok-" + string(rune('0'+calls)), nil
				})

			assert.Equal(t, tc.expected.kind, res.Kind)
			assert.Equal(t, tc.expected.attempts, res.Attempts)
			assert.Equal(t, tc.expected.text, res.Text)
			if tc.expected.err != nil {
				assert.ErrorIs(t, res.Err, tc.expected.err)
			} else {
				assert.NoError(t, res.Err)
			}
			assert.Equal(t, tc.expected.sleeps, clock.Sleeps())
			assert.Len(t, rec.Retries(), tc.expected.retries)
			assert.Len(t, rec.Calls(), tc.expected.attempts)
		})
	}
}

func TestCaller_RetryEventsCarryStageAndDelay(t *testing.T) {
	clock := k8sagent.NewMockClock(time.Unix(0, 0))
	rec := tt.NewRecordingHook()
	caller := NewCaller(Policy{MaxAttempts: 3, BaseDelay: time.Second}).
		WithClock(clock).
		WithHooks(hooks.NewRegistry().Register(rec))

	boom := errors.New("timeout")
	res := caller.Call(context.Background(), k8sagent.StageEvaluation, 2,
		func(context.Context) (string, error) { return "", boom })
	require.Equal(t, KindExhausted, res.Kind)

	retries := rec.Retries()
	require.Len(t, retries, 2)
	for i, r := range retries {
		assert.Equal(t, k8sagent.StageEvaluation, r.Stage)
		assert.Equal(t, 2, r.Iteration)
		assert.Equal(t, i+1, r.Attempt)
		assert.Equal(t, 3, r.MaxAttempts)
		assert.ErrorIs(t, r.Err, boom)
	}
	assert.Equal(t, 2*time.Second, retries[0].Delay)
	assert.Equal(t, 4*time.Second, retries[1].Delay)
}

func TestCaller_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := k8sagent.NewMockClock(time.Unix(0, 0))
	caller := NewCaller(Policy{MaxAttempts: 3, BaseDelay: time.Second}).WithClock(clock)

	calls := 0
	res := caller.Call(ctx, k8sagent.StageGeneration, 1, func(context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("aborted")
	})

	assert.Equal(t, KindCanceled, res.Kind)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, clock.Sleeps())
}

func TestCaller_SingleAttemptPolicy(t *testing.T) {
	clock := k8sagent.NewMockClock(time.Unix(0, 0))
	caller := NewCaller(Policy{MaxAttempts: 0, BaseDelay: time.Second}).WithClock(clock)

	res := caller.Call(context.Background(), k8sagent.StageGeneration, 1,
		func(context.Context) (string, error) { return "", errors.New("nope") })

	assert.Equal(t, KindExhausted, res.Kind)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, clock.Sleeps())
}

func TestCaller_PermanentErrorsStopImmediately(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "invalid config", err: fmt.Errorf("%w: bad action schema", k8sagent.ErrInvalidConfig)},
		{name: "wrapped permanent", err: fmt.Errorf("generate: %w", Permanent(errors.New("unauthorized")))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := k8sagent.NewMockClock(time.Unix(0, 0))
			rec := tt.NewRecordingHook()
			caller := NewCaller(Policy{MaxAttempts: 3, BaseDelay: time.Second}).
				WithClock(clock).
				WithHooks(hooks.NewRegistry().Register(rec))

			calls := 0
			res := caller.Call(context.Background(), k8sagent.StageGeneration, 1,
				func(context.Context) (string, error) {
					calls++
					return "", tc.err
				})

			assert.Equal(t, KindPermanent, res.Kind)
			assert.Equal(t, 1, res.Attempts)
			assert.Equal(t, 1, calls)
			assert.ErrorIs(t, res.Err, tc.err)
			assert.Empty(t, clock.Sleeps())
			assert.Empty(t, rec.Retries())
		})
	}
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(errors.New("timeout")))

	boom := errors.New("forbidden")
	err := Permanent(boom)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "forbidden", err.Error())
	assert.True(t, IsPermanent(fmt.Errorf("%w: x", k8sagent.ErrInvalidConfig)))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "succeeded", KindSucceeded.String())
	assert.Equal(t, "exhausted", KindExhausted.String())
	assert.Equal(t, "canceled", KindCanceled.String())
	assert.Equal(t, "permanent", KindPermanent.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
