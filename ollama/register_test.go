package ollama_test

import (
	"testing"
	"time"

	// Import ollama package to trigger init() registration
	_ "github.com/randalmurphal/ollamakit/ollama"
	"github.com/randalmurphal/ollamakit/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderRegistration(t *testing.T) {
	assert.True(t, provider.IsRegistered("ollama"), "ollama provider should be registered")
	assert.Contains(t, provider.Available(), "ollama")
}

func TestOllamaProviderNew(t *testing.T) {
	client, err := provider.New("ollama", provider.Config{
		Model:   "llama3.1",
		Timeout: time.Minute,
		Options: map[string]any{"host": "localhost:11434"},
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	assert.Equal(t, "ollama", client.Provider())
	assert.Equal(t, provider.OllamaCapabilities, client.Capabilities())
}

func TestOllamaProviderNew_InvalidConfig(t *testing.T) {
	_, err := provider.New("ollama", provider.Config{Timeout: -time.Second})
	assert.Error(t, err)

	_, err = provider.New("ollama", provider.Config{
		Options: map[string]any{"host": "ftp://localhost"},
	})
	assert.Error(t, err)
}
