package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/actions"
	"github.com/xj90713/k8sagent/agents/evalopt"
	"github.com/xj90713/k8sagent/config"
	"github.com/xj90713/k8sagent/executor"
	"github.com/xj90713/k8sagent/hooks"
	"github.com/xj90713/k8sagent/models"
	"github.com/xj90713/k8sagent/observability"
)

// app is the wired pipeline shared by every command.
type app struct {
	executor *executor.Executor
	metrics  *prometheus.Registry
	logger   *zap.Logger
	shutdown func(context.Context) error
}

// Close flushes the tracer and the logger.
func (a *app) Close(ctx context.Context) error {
	var err error
	if a.shutdown != nil {
		err = a.shutdown(ctx)
	}
	_ = a.logger.Sync()
	return err
}

// buildApp wires model, actions, loop, executor and observability from cfg.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	model, err := newModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := hooks.NewRegistry().
		Register(observability.NewLogHook(logger)).
		Register(observability.NewMetricsHook(metrics)).
		Register(observability.NewTracingHook())

	var shutdown func(context.Context) error
	if cfg.Tracing.Endpoint != "" {
		shutdown, err = observability.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return nil, err
		}
		logger.Info("tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	var callOpts []llms.CallOption
	if cfg.Model.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(cfg.Model.Temperature))
	}

	gen := models.NewGenerator(model).
		WithHooks(registry).
		WithMaxActionRounds(cfg.Model.MaxActionRounds).
		WithCallOptions(callOpts...)
	eval := models.NewEvaluator(model).WithCallOptions(callOpts...)

	agent := evalopt.NewAgent(gen, eval).
		WithActions(buildActions(cfg.Actions, cfg.Model)...).
		WithLimits(cfg.Loop.Limits()).
		WithHooks(registry)

	logger.Info("pipeline ready",
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", model.ModelName()),
		zap.Int("actions", len(cfg.Actions)),
		zap.Int("max_iterations", cfg.Loop.MaxIterations),
		zap.Int("max_attempts", cfg.Loop.MaxAttempts),
		zap.Duration("base_delay", cfg.Loop.BaseDelay))

	return &app{
		executor: executor.New(agent).WithHooks(registry),
		metrics:  metrics,
		logger:   logger,
		shutdown: shutdown,
	}, nil
}

func newModel(cfg config.ModelConfig) (*models.LCGWrapper, error) {
	client := models.NewHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return models.NewOpenAIModel(cfg.Name, cfg.APIKey, cfg.BaseURL, client)
	case config.ProviderGitHub:
		name := cfg.Name
		if name == "" {
			name = models.GHModelGPT41
		}
		return models.NewGitHubModel(name, cfg.APIKey, client)
	default:
		return nil, fmt.Errorf("%w: unknown model provider %q", k8sagent.ErrInvalidConfig, cfg.Provider)
	}
}

func buildActions(cfgs []config.ActionConfig, modelCfg config.ModelConfig) []k8sagent.Action {
	client := models.NewHTTPClient(modelCfg.ConnectTimeout, 0)
	out := make([]k8sagent.Action, 0, len(cfgs))
	for _, c := range cfgs {
		a := actions.NewRemote(c.Name, c.Endpoint).
			WithDescription(c.Description).
			WithParameterSchema(c.Parameters).
			WithHTTPClient(client)
		if c.Timeout > 0 {
			a.WithTimeout(c.Timeout)
		}
		for k, v := range c.Headers {
			a.WithHeader(k, v)
		}
		out = append(out, a)
	}
	return out
}

// closeApp closes a with a bounded timeout, ignoring a canceled parent context.
func closeApp(a *app, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
