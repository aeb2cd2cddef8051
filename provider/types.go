package provider

import (
	"encoding/json"
	"strings"
	"time"
)

// Request configures a completion call.
type Request struct {
	// SystemPrompt sets the system message that guides the model's behavior.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Messages is the conversation to send to the model.
	Messages []Message `json:"messages"`

	// Model overrides the client's configured model.
	Model string `json:"model,omitempty"`

	// MaxTokens limits the response length. 0 uses the model default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls response randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// ResponseSchema constrains the output to a JSON schema.
	ResponseSchema json.RawMessage `json:"response_schema,omitempty"`

	// Options holds provider-specific parameters.
	Options map[string]any `json:"options,omitempty"`
}

// Message is a conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTextMessage creates a text message.
func NewTextMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// LastUserMessage returns the content of the last user message, or "".
func (r Request) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// SystemText returns SystemPrompt followed by the content of any system
// messages, separated by blank lines.
func (r Request) SystemText() string {
	var parts []string
	if s := strings.TrimSpace(r.SystemPrompt); s != "" {
		parts = append(parts, s)
	}
	for _, m := range r.Messages {
		if m.Role == RoleSystem && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, strings.TrimSpace(m.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Response is the output of a completion call.
type Response struct {
	// Content is the generated text.
	Content string `json:"content"`

	// Usage tracks token consumption, when the provider reports it.
	Usage TokenUsage `json:"usage"`

	// Model is the model that served the request.
	Model string `json:"model"`

	// FinishReason indicates why generation stopped, e.g. "stop" or "length".
	FinishReason string `json:"finish_reason"`

	// Duration is the wall time of the call.
	Duration time.Duration `json:"duration"`

	// Metadata holds provider-specific response data.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// StreamChunk is a piece of a streaming response.
type StreamChunk struct {
	// Content is the text in this chunk.
	Content string `json:"content,omitempty"`

	// Usage is set on the final chunk when the provider reports it.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Done marks the final chunk.
	Done bool `json:"done"`

	// Error is non-nil if streaming failed. It is the last chunk sent.
	Error error `json:"-"`
}
