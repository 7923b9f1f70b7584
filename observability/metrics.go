package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xj90713/k8sagent"
)

// UnknownActionLabel is the action label for calls to actions that are not registered.
const UnknownActionLabel = "unknown"

// MetricsHook records pipeline events as Prometheus series.
type MetricsHook struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    prometheus.Histogram
	iterationsPerReq   prometheus.Histogram
	callsTotal         *prometheus.CounterVec
	callDuration       *prometheus.HistogramVec
	retriesTotal       *prometheus.CounterVec
	evaluationsSkipped prometheus.Counter
	actionCallsTotal   *prometheus.CounterVec
}

// NewMetricsHook registers the k8sagent series with reg and returns the hook. Registering
// twice with the same registerer panics, as promauto does.
func NewMetricsHook(reg prometheus.Registerer) *MetricsHook {
	f := promauto.With(reg)
	return &MetricsHook{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "k8sagent_requests_total",
				Help: "Total number of invoke requests",
			},
			[]string{"status"}, // status: success, normalized, error
		),
		requestDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "k8sagent_request_duration_seconds",
				Help:    "Invoke duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		iterationsPerReq: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "k8sagent_request_iterations",
				Help:    "Candidates generated per request",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		callsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "k8sagent_capability_calls_total",
				Help: "Total capability call attempts",
			},
			[]string{"stage", "status"}, // status: success, error
		),
		callDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "k8sagent_capability_call_duration_seconds",
				Help:    "Capability call attempt duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		retriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "k8sagent_retries_total",
				Help: "Total capability call retries",
			},
			[]string{"stage"},
		),
		evaluationsSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "k8sagent_evaluations_skipped_total",
				Help: "Evaluations replaced by a synthetic pass after exhausting attempts",
			},
		),
		actionCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "k8sagent_action_calls_total",
				Help: "Total action calls requested by the model",
			},
			[]string{"action", "status"},
		),
	}
}

func (h *MetricsHook) OnAfterInvoke(_ context.Context, e k8sagent.AfterInvokeEvent) {
	status := "success"
	switch {
	case e.Err != nil:
		status = "error"
	case e.Normalized:
		status = "normalized"
	}
	h.requestsTotal.WithLabelValues(status).Inc()
	h.requestDuration.Observe(e.Duration.Seconds())
	h.iterationsPerReq.Observe(float64(e.Iterations))
}

func (h *MetricsHook) OnAfterCall(_ context.Context, e k8sagent.AfterCallEvent) {
	h.callsTotal.WithLabelValues(string(e.Stage), statusOf(e.Error)).Inc()
	h.callDuration.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
}

func (h *MetricsHook) OnRetry(_ context.Context, e k8sagent.RetryEvent) {
	h.retriesTotal.WithLabelValues(string(e.Stage)).Inc()
}

func (h *MetricsHook) OnEvaluationSkipped(context.Context, k8sagent.EvaluationSkippedEvent) {
	h.evaluationsSkipped.Inc()
}

func (h *MetricsHook) OnAfterActionCall(_ context.Context, e k8sagent.AfterActionCallEvent) {
	h.actionCallsTotal.WithLabelValues(actionLabel(e), statusOf(e.Error)).Inc()
}

// actionLabel keeps the action label bounded to registered names. Names the model invents
// are counted under UnknownActionLabel.
func actionLabel(e k8sagent.AfterActionCallEvent) string {
	if errors.Is(e.Error, k8sagent.ErrUnknownAction) {
		return UnknownActionLabel
	}
	return e.ActionName
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	_ k8sagent.AfterInvokeHook       = (*MetricsHook)(nil)
	_ k8sagent.AfterCallHook         = (*MetricsHook)(nil)
	_ k8sagent.RetryHook             = (*MetricsHook)(nil)
	_ k8sagent.EvaluationSkippedHook = (*MetricsHook)(nil)
	_ k8sagent.AfterActionCallHook   = (*MetricsHook)(nil)
)
