// Package config loads ollamakit CLI settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. a settings file (.toml, .yaml or .yml)
//  3. a .env file, which only fills variables not already in the environment
//  4. OLLAMAKIT_* environment variables (OLLAMA_HOST is honored for the host)
//
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/ollamakit/generate"
)

// DefaultEnvFile is read when no env file is named.
const DefaultEnvFile = ".env"

// Settings holds everything the CLI needs to run a generation.
type Settings struct {
	// Host is the generation server address.
	Host string `toml:"host" yaml:"host"`

	// Model is used when no model flag is given. Empty means prompt for it.
	Model string `toml:"model" yaml:"model"`

	// System overrides the model's system prompt.
	System string `toml:"system" yaml:"system"`

	// Timeout bounds each generation. 0 means none.
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`

	// MaxLineSize bounds one streamed line, in bytes. 0 uses the default.
	MaxLineSize int `toml:"max_line_size" yaml:"max_line_size"`

	// Transcript, when set, is a file every decoded chunk is appended to.
	Transcript string `toml:"transcript" yaml:"transcript"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// OTLPEndpoint, when set, enables trace export over OTLP/HTTP.
	OTLPEndpoint string `toml:"otlp_endpoint" yaml:"otlp_endpoint"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Host:     generate.DefaultBaseURL,
		LogLevel: "warn",
	}
}

// Load builds settings from defaults, the settings file at configPath, the
// env file and the environment. An empty configPath falls back to
// $OLLAMAKIT_CONFIG; an empty envFile means DefaultEnvFile. A missing env file
// is not an error; a missing settings file is.
func Load(configPath, envFile string) (Settings, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return Settings{}, err
	}

	s := Default()
	if configPath == "" {
		configPath = os.Getenv("OLLAMAKIT_CONFIG")
	}
	if configPath != "" {
		if err := s.LoadFile(configPath); err != nil {
			return Settings{}, err
		}
	}
	if err := s.LoadFromEnv(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadEnvFile loads variables from path into the process environment without
// overriding variables that are already set.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadFile overlays the settings file at path. The format follows the
// extension. Keys absent from the file leave current values untouched.
func (s *Settings) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), s); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("settings file %s: unsupported format %q, expected .toml, .yaml or .yml", path, ext)
	}
	return nil
}

// LoadFromEnv overlays environment variables.
//
// Supported variables:
//   - OLLAMAKIT_HOST (falls back to OLLAMA_HOST)
//   - OLLAMAKIT_MODEL
//   - OLLAMAKIT_SYSTEM_PROMPT
//   - OLLAMAKIT_TIMEOUT (e.g. "2m")
//   - OLLAMAKIT_MAX_LINE_SIZE
//   - OLLAMAKIT_TRANSCRIPT
//   - OLLAMAKIT_LOG_LEVEL
//   - OLLAMAKIT_OTLP_ENDPOINT
func (s *Settings) LoadFromEnv() error {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		s.Host = v
	}
	if v := os.Getenv("OLLAMAKIT_HOST"); v != "" {
		s.Host = v
	}
	if v := os.Getenv("OLLAMAKIT_MODEL"); v != "" {
		s.Model = v
	}
	if v := os.Getenv("OLLAMAKIT_SYSTEM_PROMPT"); v != "" {
		s.System = v
	}
	if v := os.Getenv("OLLAMAKIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OLLAMAKIT_TIMEOUT: %w", err)
		}
		s.Timeout = d
	}
	if v := os.Getenv("OLLAMAKIT_MAX_LINE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OLLAMAKIT_MAX_LINE_SIZE: %w", err)
		}
		s.MaxLineSize = n
	}
	if v := os.Getenv("OLLAMAKIT_TRANSCRIPT"); v != "" {
		s.Transcript = v
	}
	if v := os.Getenv("OLLAMAKIT_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("OLLAMAKIT_OTLP_ENDPOINT"); v != "" {
		s.OTLPEndpoint = v
	}
	return nil
}

// Validate checks if the settings are usable.
func (s Settings) Validate() error {
	cfg := s.ClientConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. Empty means info.
func (s Settings) Level() (slog.Level, error) {
	var level slog.Level
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// ClientConfig returns the generation client configuration these settings describe.
func (s Settings) ClientConfig() generate.Config {
	return generate.Config{
		BaseURL:     s.Host,
		Timeout:     s.Timeout,
		MaxLineSize: s.MaxLineSize,
	}
}
