package generate

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// RequestOption adjusts a single generation request.
type RequestOption func(*Request)

// WithSystem overrides the model's system prompt.
func WithSystem(system string) RequestOption {
	return func(r *Request) { r.System = system }
}

// WithFormatJSON asks the server to emit a JSON document.
func WithFormatJSON() RequestOption {
	return func(r *Request) { r.Format = json.RawMessage(`"json"`) }
}

// WithFormat sets the raw format value: "json" or a JSON schema document.
func WithFormat(format json.RawMessage) RequestOption {
	return func(r *Request) { r.Format = format }
}

// WithFormatSchema constrains output to the JSON schema of v's type.
//
//	type answer struct {
//	    Capital string `json:"capital"`
//	}
//	client.GenerateSingle(ctx, model, prompt, generate.WithFormatSchema(answer{}))
func WithFormatSchema(v any) RequestOption {
	schema := SchemaFor(v)
	return func(r *Request) { r.Format = schema }
}

// WithModelOptions sets model parameters such as temperature or num_predict.
// Later calls merge into earlier ones.
func WithModelOptions(opts map[string]any) RequestOption {
	return func(r *Request) {
		if r.Options == nil {
			r.Options = make(map[string]any, len(opts))
		}
		for k, v := range opts {
			r.Options[k] = v
		}
	}
}

// SchemaFor reflects a self-contained JSON schema from v's type.
// Returns nil if the schema cannot be encoded.
func SchemaFor(v any) json.RawMessage {
	reflector := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""

	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	return data
}

func newRequest(model, prompt string, stream bool, opts []RequestOption) Request {
	req := Request{Model: model, Prompt: prompt, Stream: stream}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
