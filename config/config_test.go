package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xj90713/k8sagent"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, k8sagent.DefaultLimits(), cfg.Loop.Limits())
	assert.Equal(t, 100*time.Second, cfg.Model.ConnectTimeout)
	assert.Equal(t, 600*time.Second, cfg.Model.ReadTimeout)
	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, 8, cfg.Model.MaxActionRounds)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  addr: ":9090"
  admin_addr: "127.0.0.1:9091"
model:
  provider: github
  name: openai/gpt-4.1
  read_timeout: 90s
loop:
  max_iterations: 2
  base_delay: 250ms
logging:
  level: debug
  development: true
actions:
  - name: list_pods
    description: List pods in a namespace
    endpoint: http://tools.local/pods
    timeout: 5s
    headers:
      Authorization: Bearer abc
    parameters:
      type: object
      properties:
        namespace:
          type: string
      required: [namespace]
`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "127.0.0.1:9091", cfg.Server.AdminAddr)
	assert.Equal(t, ProviderGitHub, cfg.Model.Provider)
	assert.Equal(t, "openai/gpt-4.1", cfg.Model.Name)
	assert.Equal(t, 90*time.Second, cfg.Model.ReadTimeout)
	assert.Equal(t, 100*time.Second, cfg.Model.ConnectTimeout, "unset fields keep defaults")
	assert.Equal(t, k8sagent.Limits{MaxIterations: 2, MaxAttempts: 3, BaseDelay: 250 * time.Millisecond},
		cfg.Loop.Limits())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	require.Len(t, cfg.Actions, 1)
	action := cfg.Actions[0]
	assert.Equal(t, "list_pods", action.Name)
	assert.Equal(t, 5*time.Second, action.Timeout)
	assert.Equal(t, "Bearer abc", action.Headers["Authorization"])
	assert.Equal(t, "object", action.Parameters["type"])
	assert.Equal(t, []any{"namespace"}, action.Parameters["required"])
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown field", yaml: "loop:\n  max_iteration: 3\n"},
		{name: "malformed yaml", yaml: "loop: [\n"},
		{name: "zero iterations", yaml: "loop:\n  max_iterations: 0\n"},
		{name: "zero attempts", yaml: "loop:\n  max_attempts: 0\n"},
		{name: "negative delay", yaml: "loop:\n  base_delay: -1s\n"},
		{name: "unknown provider", yaml: "model:\n  provider: bard\n"},
		{name: "zero action rounds", yaml: "model:\n  max_action_rounds: 0\n"},
		{name: "negative rate", yaml: "server:\n  rate_limit: -1\n"},
		{name: "zero body limit", yaml: "server:\n  max_body_bytes: 0\n"},
		{name: "admin address equals server address", yaml: "server:\n  addr: \":8080\"\n  admin_addr: \":8080\"\n"},
		{name: "action without endpoint", yaml: "actions:\n  - name: a\n"},
		{name: "action without name", yaml: "actions:\n  - endpoint: http://x\n"},
		{
			name: "action parameters are not a valid schema",
			yaml: "actions:\n  - name: list_pods\n    endpoint: http://x\n    parameters:\n      type: 5\n",
		},
		{
			name: "action parameters with unknown type name",
			yaml: "actions:\n  - name: list_pods\n    endpoint: http://x\n    parameters:\n      type: podlist\n",
		},
		{
			name: "duplicate action",
			yaml: "actions:\n  - {name: a, endpoint: http://x}\n  - {name: a, endpoint: http://y}\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorIs(t, err, k8sagent.ErrInvalidConfig)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	type input struct {
		provider string
		env      map[string]string
	}

	type expected struct {
		cfg func(*Config)
		err bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "string and numeric overrides",
			input: input{env: map[string]string{
				"K8SAGENT_ADDR":            ":7070",
				"K8SAGENT_ADMIN_ADDR":      ":7071",
				"K8SAGENT_MODEL":           "gpt-4o-mini",
				"K8SAGENT_MAX_ITERATIONS":  "5",
				"K8SAGENT_MAX_ATTEMPTS":    "2",
				"K8SAGENT_BASE_DELAY":      "10ms",
				"K8SAGENT_LOG_DEVELOPMENT": "true",
				"K8SAGENT_OTLP_ENDPOINT":   "otel:4317",
			}},
			expected: expected{cfg: func(c *Config) {
				c.Server.Addr = ":7070"
				c.Server.AdminAddr = ":7071"
				c.Model.Name = "gpt-4o-mini"
				c.Loop.MaxIterations = 5
				c.Loop.MaxAttempts = 2
				c.Loop.BaseDelay = 10 * time.Millisecond
				c.Logging.Development = true
				c.Tracing.Endpoint = "otel:4317"
			}},
		},
		{
			name:  "openai key",
			input: input{env: map[string]string{"OPENAI_API_KEY": "sk-1"}},
			expected: expected{cfg: func(c *Config) {
				c.Model.APIKey = "sk-1"
			}},
		},
		{
			name: "github token used for github provider",
			input: input{
				provider: ProviderGitHub,
				env:      map[string]string{"OPENAI_API_KEY": "sk-1", "GITHUB_TOKEN": "ghp-1"},
			},
			expected: expected{cfg: func(c *Config) {
				c.Model.Provider = ProviderGitHub
				c.Model.APIKey = "ghp-1"
			}},
		},
		{
			name:  "generic key wins",
			input: input{env: map[string]string{"OPENAI_API_KEY": "sk-1", "K8SAGENT_API_KEY": "generic"}},
			expected: expected{cfg: func(c *Config) {
				c.Model.APIKey = "generic"
			}},
		},
		{
			name:     "empty values are ignored",
			input:    input{env: map[string]string{"K8SAGENT_ADDR": ""}},
			expected: expected{cfg: func(*Config) {}},
		},
		{
			name:     "bad integer",
			input:    input{env: map[string]string{"K8SAGENT_MAX_ITERATIONS": "three"}},
			expected: expected{err: true},
		},
		{
			name:     "bad duration",
			input:    input{env: map[string]string{"K8SAGENT_BASE_DELAY": "soon"}},
			expected: expected{err: true},
		},
		{
			name:     "bad bool",
			input:    input{env: map[string]string{"K8SAGENT_LOG_DEVELOPMENT": "maybe"}},
			expected: expected{err: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if tc.input.provider != "" {
				cfg.Model.Provider = tc.input.provider
			}
			lookup := func(key string) (string, bool) {
				v, ok := tc.input.env[key]
				return v, ok
			}

			err := cfg.applyEnv(lookup)
			if tc.expected.err {
				assert.ErrorIs(t, err, k8sagent.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)

			want := Default()
			tc.expected.cfg(&want)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k8sagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  name: from-file\n"), 0o600))
	t.Setenv("K8SAGENT_MAX_ATTEMPTS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Model.Name)
	assert.Equal(t, 4, cfg.Loop.MaxAttempts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
