// Package provider defines a provider-agnostic interface over text-generation
// backends.
//
// Backends register a Factory under a name; callers create clients by name
// without importing the backend's own API:
//
//	import _ "github.com/randalmurphal/ollamakit/ollama"
//
//	client, err := provider.New("ollama", provider.Config{
//	    Model: "llama3.1",
//	    Options: map[string]any{"host": "localhost:11434"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Complete(ctx, provider.Request{
//	    Messages: []provider.Message{provider.NewTextMessage(provider.RoleUser, "say hi")},
//	})
package provider

import "context"

// Client is the unified interface for generation providers.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of response chunks.
	// The channel is closed after the final chunk (Done set) or after a chunk
	// carrying Error.
	Stream(ctx context.Context, req Request) (<-chan StreamChunk, error)

	// Provider returns the provider name.
	Provider() string

	// Capabilities returns what this provider supports.
	Capabilities() Capabilities

	// Close releases any resources held by the client.
	Close() error
}

// Capabilities describes what a provider supports.
type Capabilities struct {
	// Streaming indicates incremental delivery of generated text.
	Streaming bool `json:"streaming"`

	// SystemPrompt indicates the request's SystemPrompt is honored.
	SystemPrompt bool `json:"system_prompt"`

	// StructuredOutput indicates output can be constrained to a JSON schema.
	StructuredOutput bool `json:"structured_output"`

	// Sessions indicates multi-turn state is kept server-side.
	Sessions bool `json:"sessions"`
}

// OllamaCapabilities describes a local Ollama server's /api/generate endpoint.
var OllamaCapabilities = Capabilities{
	Streaming:        true,
	SystemPrompt:     true,
	StructuredOutput: true,
	Sessions:         false,
}
