package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Admin serves /healthz and /metrics on their own listener.
//
//	admin := server.NewAdmin(registry).WithAddr(":9090")
//	g.Go(func() error { return admin.ListenAndServe(ctx, 5*time.Second) })
type Admin struct {
	addr     string
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// DefaultAdminAddr is the default admin listen address.
const DefaultAdminAddr = ":9090"

// NewAdmin creates an Admin exposing gatherer. A nil gatherer means the default registry.
func NewAdmin(gatherer prometheus.Gatherer) *Admin {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Admin{
		addr:     DefaultAdminAddr,
		gatherer: gatherer,
		logger:   zap.NewNop(),
	}
}

// WithAddr sets the listen address.
func (a *Admin) WithAddr(addr string) *Admin {
	if addr != "" {
		a.addr = addr
	}
	return a
}

// WithLogger sets the logger for transport-level messages.
func (a *Admin) WithLogger(logger *zap.Logger) *Admin {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Handler returns the routed handler.
func (a *Admin) Handler() http.Handler {
	mux := http.NewServeMux()
	registerAdminRoutes(mux, a.gatherer)
	return mux
}

// ListenAndServe serves until ctx is canceled, then shuts down within shutdownTimeout.
func (a *Admin) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (a *Admin) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	return serve(ctx, ln, a.Handler(), shutdownTimeout, a.logger.With(zap.String("listener", "admin")))
}

func registerAdminRoutes(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}
