package generate

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Request is the body of a POST to /api/generate.
// With no RequestOption applied it marshals to exactly
// {"model":...,"prompt":...,"stream":...}.
type Request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`

	// System overrides the model's system prompt.
	System string `json:"system,omitempty"`

	// Format is "json" or a JSON schema constraining the output.
	Format json.RawMessage `json:"format,omitempty"`

	// Options holds model parameters such as temperature or num_predict.
	Options map[string]any `json:"options,omitempty"`
}

// Chunk is one decoded JSON object of a generation response.
//
// Response holds the "response" member. Every other member is kept verbatim
// in Extra, so marshaling a Chunk reproduces what the server sent.
type Chunk struct {
	Response string
	Extra    map[string]json.RawMessage

	hasResponse bool
}

// TextChunk returns a Chunk whose response is s.
func TextChunk(s string) Chunk {
	return Chunk{Response: s, hasResponse: true}
}

// HasResponse reports whether the decoded object had a non-null "response"
// member.
func (c Chunk) HasResponse() bool {
	return c.hasResponse
}

// Text returns the response fragment, or a *SchemaError if the object had no
// "response" member.
func (c Chunk) Text() (string, error) {
	if !c.hasResponse {
		return "", &SchemaError{Field: "response", ServerError: c.ServerError()}
	}
	return c.Response, nil
}

// Done reports the server's completion flag. False when absent.
func (c Chunk) Done() bool {
	var done bool
	c.Field("done", &done)
	return done
}

// Model returns the model name the server reported, if any.
func (c Chunk) Model() string {
	var model string
	c.Field("model", &model)
	return model
}

// ServerError returns the "error" member, which servers send in place of a
// response when generation fails.
func (c Chunk) ServerError() string {
	var msg string
	c.Field("error", &msg)
	return msg
}

// Field decodes the named member into v and reports whether it was present
// and decodable. The "response" member is not in Extra; use Response.
func (c Chunk) Field(name string, v any) bool {
	raw, ok := c.Extra[name]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

var errNotObject = errors.New("expected a JSON object")

// UnmarshalJSON implements json.Unmarshaler.
func (c *Chunk) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*c = Chunk{}
	// A null response counts as absent and stays in Extra verbatim.
	if raw, ok := fields["response"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, &c.Response); err != nil {
			return err
		}
		c.hasResponse = true
		delete(fields, "response")
	}
	if len(fields) > 0 {
		c.Extra = fields
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Chunk) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		fields[k] = v
	}
	if c.hasResponse {
		fields["response"] = c.Response
	}
	return json.Marshal(fields)
}

// Concat joins the response fragments of chunks in order.
func Concat(chunks []Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Response)
	}
	return sb.String()
}
