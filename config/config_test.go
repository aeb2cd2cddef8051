package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OLLAMA_HOST", "OLLAMAKIT_HOST", "OLLAMAKIT_MODEL", "OLLAMAKIT_SYSTEM_PROMPT",
		"OLLAMAKIT_TIMEOUT", "OLLAMAKIT_MAX_LINE_SIZE", "OLLAMAKIT_TRANSCRIPT",
		"OLLAMAKIT_LOG_LEVEL", "OLLAMAKIT_OTLP_ENDPOINT", "OLLAMAKIT_CONFIG",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.NoError(t, s.Validate())
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ollamakit.toml", `
host = "gpu-box:11434"
model = "llama3.1"
system = "be brief"
timeout = "2m"
max_line_size = 4096
transcript = "runs.jsonl"
log_level = "debug"
`)

	s, err := Load(path, filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	assert.Equal(t, "gpu-box:11434", s.Host)
	assert.Equal(t, "llama3.1", s.Model)
	assert.Equal(t, "be brief", s.System)
	assert.Equal(t, 2*time.Minute, s.Timeout)
	assert.Equal(t, 4096, s.MaxLineSize)
	assert.Equal(t, "runs.jsonl", s.Transcript)

	level, err := s.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ollamakit.yaml", `
model: qwen2.5
timeout: 30s
otlp_endpoint: localhost:4318
`)

	s, err := Load(path, filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	assert.Equal(t, "qwen2.5", s.Model)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, "localhost:4318", s.OTLPEndpoint)
	assert.Equal(t, Default().Host, s.Host, "keys absent from the file keep their defaults")
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "settings.yml", "model: mistral\n")
	t.Setenv("OLLAMAKIT_CONFIG", path)

	s, err := Load("", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "mistral", s.Model)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	noEnv := filepath.Join(t.TempDir(), "none.env")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), noEnv)
	assert.Error(t, err, "a named settings file must exist")

	_, err = Load(writeFile(t, "settings.json", `{}`), noEnv)
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeFile(t, "bad.toml", `host = `), noEnv)
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "model: [unclosed"), noEnv)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ollamakit.toml", "host = \"file-host:11434\"\nmodel = \"from-file\"\n")
	t.Setenv("OLLAMA_HOST", "ollama-host:11434")
	t.Setenv("OLLAMAKIT_MODEL", "from-env")
	t.Setenv("OLLAMAKIT_TIMEOUT", "45s")

	s, err := Load(path, filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "ollama-host:11434", s.Host)
	assert.Equal(t, "from-env", s.Model)
	assert.Equal(t, 45*time.Second, s.Timeout)

	t.Setenv("OLLAMAKIT_HOST", "kit-host:11434")
	s, err = Load(path, filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "kit-host:11434", s.Host, "OLLAMAKIT_HOST wins over OLLAMA_HOST")
}

func TestLoad_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMAKIT_TIMEOUT", "soon")

	_, err := Load("", filepath.Join(t.TempDir(), "none.env"))
	assert.ErrorContains(t, err, "OLLAMAKIT_TIMEOUT")

	clearEnv(t)
	t.Setenv("OLLAMAKIT_MAX_LINE_SIZE", "big")
	_, err = Load("", filepath.Join(t.TempDir(), "none.env"))
	assert.ErrorContains(t, err, "OLLAMAKIT_MAX_LINE_SIZE")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "OLLAMAKIT_MODEL=from-dotenv\nOLLAMAKIT_LOG_LEVEL=error\n")
	t.Setenv("OLLAMAKIT_LOG_LEVEL", "debug")
	// godotenv sets variables directly; register cleanup for the one it adds.
	t.Setenv("OLLAMAKIT_MODEL", "")
	os.Unsetenv("OLLAMAKIT_MODEL")

	s, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", s.Model)
	assert.Equal(t, "debug", s.LogLevel, "the env file must not override the environment")
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{name: "defaults", s: Default()},
		{name: "bad host scheme", s: Settings{Host: "ftp://x"}, wantErr: true},
		{name: "negative timeout", s: Settings{Timeout: -time.Second}, wantErr: true},
		{name: "bad log level", s: Settings{LogLevel: "loud"}, wantErr: true},
		{name: "empty log level", s: Settings{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_ClientConfig(t *testing.T) {
	s := Settings{Host: "gpu-box:11434", Timeout: time.Minute, MaxLineSize: 1 << 20}
	cfg := s.ClientConfig().WithDefaults()

	assert.Equal(t, "http://gpu-box:11434", cfg.BaseURL)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 1<<20, cfg.MaxLineSize)
}
