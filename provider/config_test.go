package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid config", cfg: Config{Provider: "ollama"}},
		{name: "missing provider", cfg: Config{}, wantErr: true},
		{name: "negative timeout", cfg: Config{Provider: "ollama", Timeout: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("OLLAMAKIT_PROVIDER", "ollama")
	t.Setenv("OLLAMAKIT_MODEL", "llama3.1")
	t.Setenv("OLLAMAKIT_SYSTEM_PROMPT", "be brief")
	t.Setenv("OLLAMAKIT_TIMEOUT", "90s")
	t.Setenv("OLLAMAKIT_HOST", "gpu-box:11434")

	cfg := Config{Model: "overridden"}
	cfg.LoadFromEnv()

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3.1", cfg.Model)
	assert.Equal(t, "be brief", cfg.SystemPrompt)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "gpu-box:11434", cfg.GetStringOption("host", ""))
}

func TestConfig_LoadFromEnv_InvalidTimeoutIgnored(t *testing.T) {
	t.Setenv("OLLAMAKIT_TIMEOUT", "soon")

	cfg := Config{Timeout: time.Minute}
	cfg.LoadFromEnv()
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestConfig_WithMethods(t *testing.T) {
	base := Config{Options: map[string]any{"host": "a"}}

	cfg := base.WithProvider("ollama").WithModel("llama3.1").WithOption("host", "b")

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3.1", cfg.Model)
	assert.Equal(t, "b", cfg.GetStringOption("host", ""))
	assert.Equal(t, "a", base.GetStringOption("host", ""), "WithOption must not modify the original")
}

func TestConfig_GetOptions(t *testing.T) {
	cfg := Config{
		Options: map[string]any{
			"string_opt": "hello",
			"int_opt":    42,
			"float_opt":  3.0,
			"str_int":    "2048",
		},
	}

	assert.Equal(t, "hello", cfg.GetStringOption("string_opt", ""))
	assert.Equal(t, "default", cfg.GetStringOption("missing", "default"))
	assert.Equal(t, "default", cfg.GetStringOption("int_opt", "default"))

	assert.Equal(t, 42, cfg.GetIntOption("int_opt", 0))
	assert.Equal(t, 3, cfg.GetIntOption("float_opt", 0))
	assert.Equal(t, 2048, cfg.GetIntOption("str_int", 0))
	assert.Equal(t, 100, cfg.GetIntOption("string_opt", 100))
	assert.Equal(t, 100, Config{}.GetIntOption("missing", 100))
}
