// Package config loads service configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30m" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds all service settings.
type Config struct {
	// Addr is the host:port the HTTP server listens on.
	Addr string `yaml:"addr"`
	// Model selects the chat model, e.g. "anthropic/claude-sonnet-4-5" or "mock".
	Model string `yaml:"model"`
	// MaxTokens caps model responses.
	MaxTokens int `yaml:"max_tokens"`
	// APIKey, when set, requires a Bearer token on API requests.
	APIKey string `yaml:"api_key"`
	// CORSOrigins lists allowed origins for browser clients. "*" allows all.
	CORSOrigins []string `yaml:"cors_origins"`
	// SessionMaxIdle is how long a session may sit idle before the sweeper
	// removes it.
	SessionMaxIdle Duration `yaml:"session_max_idle"`
	// SweepSchedule is a cron expression for the session sweeper.
	SweepSchedule string `yaml:"sweep_schedule"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Seed loads the development HR fixtures on startup.
	Seed bool `yaml:"seed"`
}

// Default returns the configuration used when no file or overrides are given.
func Default() Config {
	return Config{
		Addr:           ":8080",
		Model:          "mock",
		MaxTokens:      1024,
		CORSOrigins:    []string{"*"},
		SessionMaxIdle: Duration(time.Hour),
		SweepSchedule:  "@every 10m",
		LogLevel:       "info",
		Seed:           true,
	}
}

// Load reads the config file at path, if it exists, then applies HRDESK_*
// environment overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HRDESK_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("HRDESK_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("HRDESK_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv("HRDESK_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("HRDESK_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("HRDESK_SESSION_MAX_IDLE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionMaxIdle = Duration(d)
		}
	}
	if v := os.Getenv("HRDESK_SWEEP_SCHEDULE"); v != "" {
		c.SweepSchedule = v
	}
	if v := os.Getenv("HRDESK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HRDESK_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Seed = b
		}
	}
}

// Validate checks settings that would otherwise fail at an awkward moment
// deep in startup.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if time.Duration(c.SessionMaxIdle) <= 0 {
		return fmt.Errorf("config: session_max_idle must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
