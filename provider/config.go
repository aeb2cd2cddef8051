package provider

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for creating a provider client.
// Common fields apply to all providers; use Options for provider-specific settings.
type Config struct {
	// Provider is the name of the provider to use. Required.
	Provider string `json:"provider" yaml:"provider" toml:"provider"`

	// Model is the model to use (provider-specific name), e.g. "llama3.1".
	Model string `json:"model" yaml:"model" toml:"model"`

	// SystemPrompt is prepended to every request's system text.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`

	// Timeout bounds each call. 0 means no limit beyond the caller's context.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`

	// Options holds provider-specific configuration.
	//
	// Ollama:
	//   - "host": string (server address, default "localhost:11434")
	//   - "max_line_size": int (bytes per streamed line)
	Options map[string]any `json:"options" yaml:"options" toml:"options"`
}

// DefaultConfig returns a Config with sensible defaults.
// Provider must still be set before use.
func DefaultConfig() Config {
	return Config{}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the OLLAMAKIT_ prefix and take precedence over
// existing values.
//
// Supported variables:
//   - OLLAMAKIT_PROVIDER: Provider name
//   - OLLAMAKIT_MODEL: Model name
//   - OLLAMAKIT_SYSTEM_PROMPT: System prompt
//   - OLLAMAKIT_TIMEOUT: Timeout duration (e.g., "5m")
//   - OLLAMAKIT_HOST: Sets the "host" option
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("OLLAMAKIT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("OLLAMAKIT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("OLLAMAKIT_SYSTEM_PROMPT"); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv("OLLAMAKIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("OLLAMAKIT_HOST"); v != "" {
		*c = c.WithOption("host", v)
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// WithProvider returns a copy of the config with the specified provider.
func (c Config) WithProvider(provider string) Config {
	c.Provider = provider
	return c
}

// WithModel returns a copy of the config with the specified model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithOption returns a copy of the config with the specified option set.
func (c Config) WithOption(key string, value any) Config {
	opts := make(map[string]any, len(c.Options)+1)
	for k, v := range c.Options {
		opts[k] = v
	}
	opts[key] = value
	c.Options = opts
	return c
}

// GetStringOption retrieves a string option, returning defaultVal if not set.
func (c Config) GetStringOption(key, defaultVal string) string {
	if v, ok := c.Options[key].(string); ok {
		return v
	}
	return defaultVal
}

// GetIntOption retrieves an int option, returning defaultVal if not set.
// Numeric strings are accepted, as produced by env or flag parsing.
func (c Config) GetIntOption(key string, defaultVal int) int {
	switch v := c.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
