// Package ollamakit is a client toolkit for a local text-generation server
// speaking Ollama's /api/generate protocol. Each subpackage can be used
// independently:
//
//   - generate: the HTTP client with buffered, single and streaming modes
//   - jsonl: newline-delimited JSON decoding, transcript writing and tailing
//   - provider: a provider-neutral client interface and registry
//   - ollama: the provider adapter backed by generate
//   - config: layered settings from files, .env and the environment
//
// # Quick Start
//
// Streaming:
//
//	import "github.com/randalmurphal/ollamakit/generate"
//	client := generate.NewClient()
//	stream, err := client.GenerateStreaming(ctx, "llama3.1", "say hi")
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for text, err := range stream.Fragments() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(text)
//	}
//
// Through the provider registry:
//
//	import (
//	    "github.com/randalmurphal/ollamakit/provider"
//	    _ "github.com/randalmurphal/ollamakit/ollama"
//	)
//	client, _ := provider.New("ollama", provider.Config{Model: "llama3.1"})
//	resp, _ := client.Complete(ctx, provider.Request{
//	    Messages: []provider.Message{provider.NewTextMessage(provider.RoleUser, "say hi")},
//	})
//
// The ollamakit command in cmd/ollamakit wraps the same client.
package ollamakit
