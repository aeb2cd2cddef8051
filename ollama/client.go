package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/randalmurphal/ollamakit/generate"
	"github.com/randalmurphal/ollamakit/provider"
)

// Client adapts a generate.Client to provider.Client.
type Client struct {
	gen    *generate.Client
	model  string
	system string
}

// NewClient wraps gen. model is used when a request names none; system is
// prepended to every request's system text.
func NewClient(gen *generate.Client, model, system string) *Client {
	return &Client{gen: gen, model: model, system: system}
}

// Complete implements provider.Client with a non-streamed generation.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	model, prompt, opts := c.build(req)

	start := time.Now()
	chunk, err := c.gen.GenerateSingle(ctx, model, prompt, opts...)
	if err != nil {
		return nil, classify("complete", err)
	}
	text, err := chunk.Text()
	if err != nil {
		return nil, classify("complete", err)
	}

	resp := &provider.Response{
		Content:      text,
		Usage:        usageOf(*chunk),
		Model:        chunk.Model(),
		FinishReason: finishReason(*chunk),
		Duration:     time.Since(start),
	}
	if resp.Model == "" {
		resp.Model = model
	}
	var ns int64
	if chunk.Field("total_duration", &ns) {
		resp.Metadata = map[string]any{"total_duration": time.Duration(ns)}
	}
	return resp, nil
}

// Stream implements provider.Client with a streamed generation.
// A chunk with Done set, or one carrying Error, is always the last sent.
func (c *Client) Stream(ctx context.Context, req provider.Request) (<-chan provider.StreamChunk, error) {
	model, prompt, opts := c.build(req)

	stream, err := c.gen.GenerateStreaming(ctx, model, prompt, opts...)
	if err != nil {
		return nil, classify("stream", err)
	}

	ch := make(chan provider.StreamChunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		send := func(sc provider.StreamChunk) bool {
			select {
			case ch <- sc:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for stream.Next() {
			chunk := stream.Chunk()
			sc := provider.StreamChunk{Content: chunk.Response}
			if chunk.Done() {
				usage := usageOf(chunk)
				sc.Usage = &usage
				sc.Done = true
			}
			if !send(sc) || sc.Done {
				return
			}
		}
		if err := stream.Err(); err != nil {
			send(provider.StreamChunk{Error: classify("stream", err)})
			return
		}
		send(provider.StreamChunk{Done: true})
	}()
	return ch, nil
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return Name
}

// Capabilities implements provider.Client.
func (c *Client) Capabilities() provider.Capabilities {
	return provider.OllamaCapabilities
}

// Close implements provider.Client. The HTTP client holds no resources that
// need releasing.
func (c *Client) Close() error {
	return nil
}

// build maps a provider request onto a generation call.
func (c *Client) build(req provider.Request) (model, prompt string, opts []generate.RequestOption) {
	model = req.Model
	if model == "" {
		model = c.model
	}
	prompt = flattenPrompt(req.Messages)

	system := req.SystemText()
	if c.system != "" {
		system = strings.TrimSpace(c.system + "\n\n" + system)
	}
	if system != "" {
		opts = append(opts, generate.WithSystem(system))
	}
	if len(req.ResponseSchema) > 0 {
		opts = append(opts, generate.WithFormat(req.ResponseSchema))
	}

	params := map[string]any{}
	if req.Temperature != 0 {
		params["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		params["num_predict"] = req.MaxTokens
	}
	for k, v := range req.Options {
		params[k] = v
	}
	if len(params) > 0 {
		opts = append(opts, generate.WithModelOptions(params))
	}
	return model, prompt, opts
}

// flattenPrompt renders a conversation as a single prompt. A lone user
// message is sent verbatim; longer conversations get role prefixes and end
// with an open assistant turn.
func flattenPrompt(messages []provider.Message) string {
	var turns []provider.Message
	for _, m := range messages {
		if m.Role != provider.RoleSystem {
			turns = append(turns, m)
		}
	}
	if len(turns) == 1 && turns[0].Role == provider.RoleUser {
		return turns[0].Content
	}

	var sb strings.Builder
	for _, m := range turns {
		switch m.Role {
		case provider.RoleUser:
			sb.WriteString("User: ")
		case provider.RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString(string(m.Role) + ": ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant: ")
	return sb.String()
}

func usageOf(chunk generate.Chunk) provider.TokenUsage {
	var in, out int
	chunk.Field("prompt_eval_count", &in)
	chunk.Field("eval_count", &out)
	return provider.TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

func finishReason(chunk generate.Chunk) string {
	var reason string
	if chunk.Field("done_reason", &reason) && reason != "" {
		return reason
	}
	if chunk.Done() {
		return "stop"
	}
	return ""
}

// classify maps generation errors onto provider sentinels.
func classify(op string, err error) error {
	var reqErr *generate.RequestError
	switch {
	case errors.Is(err, context.Canceled):
		return provider.NewError(Name, op, context.Canceled, false).WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return provider.NewError(Name, op, provider.ErrTimeout, true).WithCause(err)
	case errors.As(err, &reqErr):
		switch {
		case errors.Is(err, generate.ErrModelRequired):
			return provider.NewError(Name, op, provider.ErrInvalidRequest, false).WithCause(err)
		case reqErr.StatusCode == http.StatusTooManyRequests:
			return provider.NewError(Name, op, provider.ErrRateLimited, true).WithCause(err)
		case reqErr.StatusCode == 0 || reqErr.StatusCode >= 500:
			return provider.NewError(Name, op, provider.ErrUnavailable, reqErr.Temporary()).WithCause(err)
		default:
			return provider.NewError(Name, op, provider.ErrInvalidRequest, false).WithCause(err)
		}
	case generate.IsDecodeError(err), generate.IsSchemaError(err):
		return provider.NewError(Name, op, provider.ErrDecode, false).WithCause(err)
	default:
		return provider.NewError(Name, op, provider.ErrUnavailable, false).WithCause(err)
	}
}
