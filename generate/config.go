package generate

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is where Ollama listens unless told otherwise.
const DefaultBaseURL = "http://localhost:11434"

// Recorder receives every chunk decoded by a client, in arrival order.
// *jsonl.Writer implements it.
type Recorder interface {
	Write(v any) error
}

// Config holds generation client configuration.
type Config struct {
	// BaseURL is the server address. A bare host:port gets an http:// scheme.
	// Default: "http://localhost:11434".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout bounds a whole call, including reading a streamed body.
	// Default: 0, no limit beyond the caller's context.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxLineSize bounds one line of a streamed body.
	// Default: jsonl.DefaultMaxLineSize.
	MaxLineSize int `json:"max_line_size" yaml:"max_line_size"`

	HTTPClient     *http.Client         `json:"-" yaml:"-"`
	Logger         *slog.Logger         `json:"-" yaml:"-"`
	Recorder       Recorder             `json:"-" yaml:"-"`
	TracerProvider trace.TracerProvider `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{},
	}
}

// WithDefaults returns a copy of the config with defaults applied for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	c.BaseURL = normalizeBaseURL(c.BaseURL)
	if c.HTTPClient == nil {
		c.HTTPClient = defaults.HTTPClient
	}
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(normalizeBaseURL(c.BaseURL))
		if err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("base_url %q has no host", c.BaseURL)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if c.MaxLineSize < 0 {
		return fmt.Errorf("max_line_size must be >= 0, got %d", c.MaxLineSize)
	}
	return nil
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// Option configures a Client.
type Option func(*Config)

// WithBaseURL sets the server address.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) { c.BaseURL = baseURL }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithMaxLineSize bounds one line of a streamed body.
func WithMaxLineSize(n int) Option {
	return func(c *Config) { c.MaxLineSize = n }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithRecorder appends every decoded chunk to r.
func WithRecorder(r Recorder) Option {
	return func(c *Config) { c.Recorder = r }
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) { c.TracerProvider = tp }
}
