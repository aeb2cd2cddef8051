// Package ollama registers an "ollama" provider backed by a local Ollama
// server's /api/generate endpoint.
//
//	import _ "github.com/randalmurphal/ollamakit/ollama"
//
//	client, err := provider.New("ollama", provider.Config{Model: "llama3.1"})
package ollama

import (
	"fmt"

	"github.com/randalmurphal/ollamakit/generate"
	"github.com/randalmurphal/ollamakit/provider"
)

// Name is the provider name used in the registry.
const Name = "ollama"

func init() {
	provider.Register(Name, newFromProviderConfig)
}

// newFromProviderConfig is the factory registered with the provider registry.
func newFromProviderConfig(cfg provider.Config) (provider.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	genCfg := generate.Config{
		BaseURL:     cfg.GetStringOption("host", ""),
		Timeout:     cfg.Timeout,
		MaxLineSize: cfg.GetIntOption("max_line_size", 0),
	}
	if err := genCfg.Validate(); err != nil {
		return nil, fmt.Errorf("ollama config: %w", err)
	}

	return NewClient(generate.NewClientWithConfig(genCfg), cfg.Model, cfg.SystemPrompt), nil
}
