package observability

import (
	"context"
	"fmt"

	"github.com/xj90713/k8sagent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Development mode uses zap's console encoder and
// stack traces on warnings.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level: %w", k8sagent.ErrInvalidConfig, err)
	}

	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

// LogHook writes pipeline events to a zap logger. Every line carries the request id from the
// event context.
type LogHook struct {
	logger *zap.Logger
}

// NewLogHook creates a LogHook. A nil logger discards everything.
func NewLogHook(logger *zap.Logger) *LogHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHook{logger: logger}
}

func (h *LogHook) with(ctx context.Context) *zap.Logger {
	if id := k8sagent.RequestIDFromContext(ctx); id != "" {
		return h.logger.With(zap.String("request_id", id))
	}
	return h.logger
}

func (h *LogHook) OnBeforeInvoke(_ context.Context, e k8sagent.BeforeInvokeEvent) {
	h.logger.Info("request received",
		zap.String("request_id", e.RequestID),
		zap.Int("request_length", len(e.Request)))
}

func (h *LogHook) OnAfterInvoke(_ context.Context, e k8sagent.AfterInvokeEvent) {
	fields := []zap.Field{
		zap.String("request_id", e.RequestID),
		zap.Int("iterations", e.Iterations),
		zap.Int("evaluations", e.Evaluations),
		zap.Bool("normalized", e.Normalized),
		zap.Int("response_length", len(e.Response)),
		zap.Duration("duration", e.Duration),
	}
	if e.Err != nil {
		h.logger.Warn("request failed", append(fields, zap.Error(e.Err))...)
		return
	}
	h.logger.Info("request completed", fields...)
}

func (h *LogHook) OnAfterIteration(ctx context.Context, e k8sagent.AfterIterationEvent) {
	fields := []zap.Field{
		zap.Int("iteration", e.Iteration),
		zap.Bool("accepted", e.Accepted),
		zap.Duration("duration", e.Duration),
	}
	if e.Evaluation != nil {
		fields = append(fields,
			zap.String("verdict", string(e.Evaluation.Verdict)),
			zap.Bool("evaluation_skipped", e.Evaluation.Skipped))
	}
	h.with(ctx).Debug("iteration completed", fields...)
}

func (h *LogHook) OnRetry(ctx context.Context, e k8sagent.RetryEvent) {
	h.with(ctx).Warn("capability call failed, retrying",
		zap.String("stage", string(e.Stage)),
		zap.Int("iteration", e.Iteration),
		zap.Int("attempt", e.Attempt),
		zap.Int("max_attempts", e.MaxAttempts),
		zap.Duration("delay", e.Delay),
		zap.Error(e.Err))
}

func (h *LogHook) OnEvaluationSkipped(ctx context.Context, e k8sagent.EvaluationSkippedEvent) {
	h.with(ctx).Warn("evaluation skipped after repeated failures",
		zap.Int("iteration", e.Iteration),
		zap.Int("attempts", e.Attempts),
		zap.Error(e.Err))
}

func (h *LogHook) OnAfterActionCall(ctx context.Context, e k8sagent.AfterActionCallEvent) {
	fields := []zap.Field{
		zap.String("action", e.ActionName),
		zap.Duration("duration", e.Duration),
	}
	if e.Error != nil {
		h.with(ctx).Warn("action call failed", append(fields, zap.Error(e.Error))...)
		return
	}
	h.with(ctx).Debug("action called", append(fields, zap.Int("output_length", len(e.Output)))...)
}

func (h *LogHook) OnError(_ context.Context, e k8sagent.ErrorEvent) {
	fields := []zap.Field{zap.String("request_id", e.RequestID), zap.Error(e.Err)}
	if e.Panic != nil {
		fields = append(fields, zap.Any("panic", e.Panic), zap.Stack("stack"))
	}
	h.logger.Error("request aborted", fields...)
}

var (
	_ k8sagent.BeforeInvokeHook      = (*LogHook)(nil)
	_ k8sagent.AfterInvokeHook       = (*LogHook)(nil)
	_ k8sagent.AfterIterationHook    = (*LogHook)(nil)
	_ k8sagent.RetryHook             = (*LogHook)(nil)
	_ k8sagent.EvaluationSkippedHook = (*LogHook)(nil)
	_ k8sagent.AfterActionCallHook   = (*LogHook)(nil)
	_ k8sagent.ErrorHook             = (*LogHook)(nil)
)
