// Package config loads the k8sagent service configuration from YAML with environment
// overrides.
//
// Precedence, lowest first: Default, the YAML file, environment variables.
//
//	cfg, err := config.Load("k8sagent.yaml")
//	if err != nil {
//	    return err
//	}
//	agent := evalopt.NewAgent(gen, eval).WithLimits(cfg.Loop.Limits())
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/xj90713/k8sagent"
	"github.com/xj90713/k8sagent/schema"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in ModelConfig.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGitHub = "github"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Model   ModelConfig    `yaml:"model"`
	Loop    LoopConfig     `yaml:"loop"`
	Logging LoggingConfig  `yaml:"logging"`
	Tracing TracingConfig  `yaml:"tracing"`
	Actions []ActionConfig `yaml:"actions"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// AdminAddr moves /healthz and /metrics to a separate listener. Empty serves them on Addr.
	AdminAddr       string        `yaml:"admin_addr"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ModelConfig selects the model provider.
type ModelConfig struct {
	Provider        string        `yaml:"provider"`
	Name            string        `yaml:"name"`
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	Temperature     float64       `yaml:"temperature"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	MaxActionRounds int           `yaml:"max_action_rounds"`
}

// LoopConfig bounds the generate/evaluate loop.
type LoopConfig struct {
	MaxIterations int           `yaml:"max_iterations"`
	MaxAttempts   int           `yaml:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
}

// Limits returns the loop bounds as k8sagent.Limits.
func (c LoopConfig) Limits() k8sagent.Limits {
	return k8sagent.Limits{
		MaxIterations: c.MaxIterations,
		MaxAttempts:   c.MaxAttempts,
		BaseDelay:     c.BaseDelay,
	}
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// TracingConfig configures OTLP trace export. An empty Endpoint disables export.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// ActionConfig declares one remote action.
type ActionConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Endpoint    string            `yaml:"endpoint"`
	Parameters  map[string]any    `yaml:"parameters"`
	Headers     map[string]string `yaml:"headers"`
	Timeout     time.Duration     `yaml:"timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	limits := k8sagent.DefaultLimits()
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			RateLimit:       10,
			RateBurst:       20,
			ShutdownTimeout: 15 * time.Second,
		},
		Model: ModelConfig{
			Provider:        ProviderOpenAI,
			Name:            "gpt-4o",
			ConnectTimeout:  100 * time.Second,
			ReadTimeout:     600 * time.Second,
			MaxActionRounds: 8,
		},
		Loop: LoopConfig{
			MaxIterations: limits.MaxIterations,
			MaxAttempts:   limits.MaxAttempts,
			BaseDelay:     limits.BaseDelay,
		},
		Logging: LoggingConfig{Level: "info"},
		Tracing: TracingConfig{ServiceName: "k8sagent"},
	}
}

// Load reads the YAML file at path over Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default without reading the environment. It validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", k8sagent.ErrInvalidConfig, err)
	}
	return nil
}

// applyEnv overrides fields from the environment. lookup is os.LookupEnv outside tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("K8SAGENT_ADDR", &c.Server.Addr)
	str("K8SAGENT_ADMIN_ADDR", &c.Server.AdminAddr)
	str("K8SAGENT_MODEL_PROVIDER", &c.Model.Provider)
	str("K8SAGENT_MODEL", &c.Model.Name)
	str("K8SAGENT_MODEL_BASE_URL", &c.Model.BaseURL)
	str("K8SAGENT_LOG_LEVEL", &c.Logging.Level)
	str("K8SAGENT_OTLP_ENDPOINT", &c.Tracing.Endpoint)

	// The generic key wins over the provider's conventional variable.
	str("OPENAI_API_KEY", &c.Model.APIKey)
	if c.Model.Provider == ProviderGitHub {
		str("GITHUB_TOKEN", &c.Model.APIKey)
	}
	str("K8SAGENT_API_KEY", &c.Model.APIKey)

	if v, ok := lookup("K8SAGENT_MAX_ITERATIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: K8SAGENT_MAX_ITERATIONS: %w", k8sagent.ErrInvalidConfig, err)
		}
		c.Loop.MaxIterations = n
	}
	if v, ok := lookup("K8SAGENT_MAX_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: K8SAGENT_MAX_ATTEMPTS: %w", k8sagent.ErrInvalidConfig, err)
		}
		c.Loop.MaxAttempts = n
	}
	if v, ok := lookup("K8SAGENT_BASE_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: K8SAGENT_BASE_DELAY: %w", k8sagent.ErrInvalidConfig, err)
		}
		c.Loop.BaseDelay = d
	}
	if v, ok := lookup("K8SAGENT_LOG_DEVELOPMENT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: K8SAGENT_LOG_DEVELOPMENT: %w", k8sagent.ErrInvalidConfig, err)
		}
		c.Logging.Development = b
	}
	return nil
}

// Validate reports the first invalid setting, wrapped around k8sagent.ErrInvalidConfig.
// The API key is not checked here; providers reject a missing key when they are built.
func (c Config) Validate() error {
	if err := c.Loop.Limits().Validate(); err != nil {
		return err
	}
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderGitHub:
	default:
		return fmt.Errorf("%w: unknown model provider %q", k8sagent.ErrInvalidConfig, c.Model.Provider)
	}
	if c.Model.MaxActionRounds < 1 {
		return fmt.Errorf("%w: max action rounds must be at least 1", k8sagent.ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server max body bytes must be positive", k8sagent.ErrInvalidConfig)
	}
	if c.Server.AdminAddr != "" && c.Server.AdminAddr == c.Server.Addr {
		return fmt.Errorf("%w: admin address %q must differ from the server address",
			k8sagent.ErrInvalidConfig, c.Server.AdminAddr)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("%w: rate limit and burst must not be negative", k8sagent.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Actions))
	for i, a := range c.Actions {
		if a.Name == "" {
			return fmt.Errorf("%w: action %d has no name", k8sagent.ErrInvalidConfig, i)
		}
		if a.Endpoint == "" {
			return fmt.Errorf("%w: action %q has no endpoint", k8sagent.ErrInvalidConfig, a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate action %q", k8sagent.ErrInvalidConfig, a.Name)
		}
		seen[a.Name] = true
		if _, err := schema.Compile(a.Parameters); err != nil {
			return fmt.Errorf("%w: action %q parameters: %w", k8sagent.ErrInvalidConfig, a.Name, err)
		}
	}
	return nil
}
