// Package server exposes the executor over HTTP.
//
// Routes:
//
//	POST /api/v1/chat   text/plain request body, text/html response from Invoke
//	GET  /healthz       liveness check
//	GET  /metrics       Prometheus exposition
//
// The last two can move to a separate listener with [Admin], keeping them off the public
// port. Every response carries an X-Request-Id header; a client-supplied value is reused.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xj90713/k8sagent"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes bounds the request body.
	DefaultMaxBodyBytes = 1 << 20

	// ReadHeaderTimeout bounds reading request headers. There is no write timeout because an
	// Invoke with retries and backoff can legitimately take minutes.
	ReadHeaderTimeout = 10 * time.Second

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout = 60 * time.Second

	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"
)

// Invoker answers a request with HTML. executor.Executor implements it.
type Invoker interface {
	Invoke(ctx context.Context, request string) string
}

// Server serves the chat API.
type Server struct {
	invoker      Invoker
	addr         string
	maxBodyBytes int64
	limiter      *rate.Limiter
	gatherer     prometheus.Gatherer
	logger       *zap.Logger
	adminRoutes  bool
}

// New creates a Server for invoker with defaults: DefaultAddr, DefaultMaxBodyBytes, no rate
// limit and the default Prometheus gatherer.
func New(invoker Invoker) *Server {
	return &Server{
		invoker:      invoker,
		addr:         DefaultAddr,
		maxBodyBytes: DefaultMaxBodyBytes,
		gatherer:     prometheus.DefaultGatherer,
		logger:       zap.NewNop(),
		adminRoutes:  true,
	}
}

// WithAddr sets the listen address.
func (s *Server) WithAddr(addr string) *Server {
	if addr != "" {
		s.addr = addr
	}
	return s
}

// WithMaxBodyBytes sets the request body limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// WithRateLimit admits at most perSecond chat requests per second with the given burst.
// A non-positive rate disables limiting.
func (s *Server) WithRateLimit(perSecond float64, burst int) *Server {
	if perSecond <= 0 {
		s.limiter = nil
		return s
	}
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return s
}

// WithGatherer sets the registry served on /metrics.
func (s *Server) WithGatherer(g prometheus.Gatherer) *Server {
	s.gatherer = g
	return s
}

// WithLogger sets the logger for transport-level messages.
func (s *Server) WithLogger(logger *zap.Logger) *Server {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithAdminRoutes controls whether /healthz and /metrics are served next to the chat API.
// Disable them when an Admin listener serves them instead.
func (s *Server) WithAdminRoutes(enabled bool) *Server {
	s.adminRoutes = enabled
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", s.handleChat)
	if s.adminRoutes {
		registerAdminRoutes(mux, s.gatherer)
	}
	return withRequestID(mux)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully, waiting at most
// shutdownTimeout for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	return serve(ctx, ln, s.Handler(), shutdownTimeout, s.logger.With(zap.String("listener", "chat")))
}

// serve runs handler on ln until ctx is canceled, then shuts down gracefully.
func serve(
	ctx context.Context,
	ln net.Listener,
	handler http.Handler,
	shutdownTimeout time.Duration,
	logger *zap.Logger,
) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("http server shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	request := strings.TrimSpace(string(body))
	if request == "" {
		http.Error(w, "request body is empty", http.StatusBadRequest)
		return
	}

	html := s.invoker.Invoke(r.Context(), request)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, html); err != nil {
		s.logger.Debug("failed to write response",
			zap.String("request_id", k8sagent.RequestIDFromContext(r.Context())),
			zap.Error(err))
	}
}

// withRequestID stores the request id in the request context and echoes it in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(k8sagent.WithRequestID(r.Context(), id)))
	})
}
