package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/x1001000/mm-chart-view/pkg/macromicro"
)

// Defaults applied by LoadConfig when the YAML leaves a field empty.
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-3-flash-preview"
)

// Config is the top-level application configuration.
type Config struct {
	ProxyURL    string       `yaml:"proxy_url"` //nolint:gosec // configuration field, not a hardcoded secret
	DataBaseURL string       `yaml:"data_base_url"`
	CDNBaseURL  string       `yaml:"cdn_base_url"`
	Timeout     string       `yaml:"timeout"` // fetch timeout as a duration string (e.g. "10s")
	Gemini      GeminiConfig `yaml:"gemini"`
}

// GeminiConfig describes the hosted multimodal model.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LoadConfig reads a YAML file and returns a Config with defaults applied.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing. This allows the proxy URL and API key to be kept in
// environment variables (e.g. loaded from a .env file) rather than committed
// in the config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataBaseURL == "" {
		c.DataBaseURL = macromicro.DefaultDataBaseURL
	}
	if c.CDNBaseURL == "" {
		c.CDNBaseURL = macromicro.DefaultCDNBaseURL
	}
	if c.Timeout == "" {
		c.Timeout = macromicro.DefaultTimeout.String()
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = DefaultGeminiBaseURL
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.ProxyURL == "" {
		return fmt.Errorf("engine: config: proxy_url is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("engine: config: gemini.api_key is required")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("engine: config: invalid timeout %q: %w", c.Timeout, err)
		}
	}
	return nil
}

// FetchTimeout returns the parsed fetch timeout, falling back to the
// macromicro default when unset or unparseable.
func (c Config) FetchTimeout() time.Duration {
	if c.Timeout == "" {
		return macromicro.DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return macromicro.DefaultTimeout
	}
	return d
}
