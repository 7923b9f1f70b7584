package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xj90713/k8sagent"
)

const (
	// DefaultTimeout bounds one remote action call.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is handed back to the model.
	maxResponseBytes = 1 << 20
)

// Remote is an action served by an HTTP endpoint.
type Remote struct {
	name        string
	description string
	endpoint    string
	schema      map[string]any
	headers     http.Header
	client      *http.Client
	timeout     time.Duration
}

// NewRemote creates a Remote action that POSTs to endpoint.
func NewRemote(name, endpoint string) *Remote {
	return &Remote{
		name:     name,
		endpoint: endpoint,
		headers:  make(http.Header),
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
	}
}

// WithDescription sets the description shown to the model.
func (r *Remote) WithDescription(description string) *Remote {
	r.description = description
	return r
}

// WithParameterSchema sets the JSON Schema the arguments are validated against.
func (r *Remote) WithParameterSchema(schema map[string]any) *Remote {
	r.schema = schema
	return r
}

// WithHeader adds a header sent with every call, e.g. an authorization token.
func (r *Remote) WithHeader(key, value string) *Remote {
	r.headers.Add(key, value)
	return r
}

// WithHTTPClient sets the client used for calls.
func (r *Remote) WithHTTPClient(client *http.Client) *Remote {
	r.client = client
	return r
}

// WithTimeout sets the per-call timeout. Zero or less disables it.
func (r *Remote) WithTimeout(d time.Duration) *Remote {
	r.timeout = d
	return r
}

// Name implements k8sagent.Action.
func (r *Remote) Name() string {
	return r.name
}

// Description implements k8sagent.Action.
func (r *Remote) Description() string {
	return r.description
}

// ParameterSchema implements k8sagent.Action.
func (r *Remote) ParameterSchema() map[string]any {
	return r.schema
}

// Call implements k8sagent.Action. A non-2xx status is an error that carries the start of the
// response body.
func (r *Remote) Call(ctx context.Context, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("action %s: failed to encode arguments: %w", r.name, err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("action %s: failed to build request: %w", r.name, err)
	}
	for key, values := range r.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if id := k8sagent.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("action %s: %w", r.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("action %s: failed to read response: %w", r.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("action %s: endpoint returned %s: %s",
			r.name, resp.Status, truncate(strings.TrimSpace(string(body)), 200))
	}
	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ k8sagent.Action = (*Remote)(nil)
