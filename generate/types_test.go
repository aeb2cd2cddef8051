package generate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_UnmarshalKeepsExtraFields(t *testing.T) {
	raw := `{"model":"llama3.1","created_at":"2024-08-01T10:00:00Z","response":"Hi","done":true,"context":[1,2,3],"eval_count":7}`

	var c Chunk
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, "Hi", c.Response)
	assert.True(t, c.HasResponse())
	assert.True(t, c.Done())
	assert.Equal(t, "llama3.1", c.Model())
	assert.NotContains(t, c.Extra, "response")
	assert.JSONEq(t, `[1,2,3]`, string(c.Extra["context"]))

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestChunk_Unmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		hasResponse bool
		response    string
	}{
		{name: "response only", input: `{"response":"x"}`, hasResponse: true, response: "x"},
		{name: "empty response", input: `{"response":"","done":true}`, hasResponse: true},
		{name: "no response", input: `{"done":true}`},
		{name: "null response", input: `{"response":null,"done":true}`},
		{name: "empty object", input: `{}`},
		{name: "null", input: `null`, wantErr: true},
		{name: "array", input: `[{"response":"x"}]`, wantErr: true},
		{name: "string", input: `"x"`, wantErr: true},
		{name: "non-string response", input: `{"response":42}`, wantErr: true},
		{name: "truncated", input: `{"response":"x"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Chunk
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hasResponse, c.HasResponse())
			assert.Equal(t, tt.response, c.Response)
		})
	}
}

func TestChunk_Text(t *testing.T) {
	text, err := TextChunk("hello").Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	var c Chunk
	require.NoError(t, json.Unmarshal([]byte(`{"error":"model not loaded"}`), &c))
	_, err = c.Text()
	assert.True(t, IsSchemaError(err))
	assert.EqualError(t, err, `missing "response" field: server error: model not loaded`)
}

func TestChunk_MarshalWithoutResponse(t *testing.T) {
	var c Chunk
	require.NoError(t, json.Unmarshal([]byte(`{"done":false}`), &c))

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"done":false}`, string(out))

	out, err = json.Marshal(Chunk{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestChunk_NullResponseRoundTrip(t *testing.T) {
	raw := `{"response":null,"done":true}`

	var c Chunk
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.False(t, c.HasResponse())
	_, err := c.Text()
	assert.True(t, IsSchemaError(err))

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestConcat(t *testing.T) {
	assert.Equal(t, "", Concat(nil))
	assert.Equal(t, "Hello", Concat([]Chunk{TextChunk("Hel"), {}, TextChunk("lo")}))
}

func TestRequest_MinimalBody(t *testing.T) {
	data, err := json.Marshal(newRequest("llama3.1", "say hi", true, nil))
	require.NoError(t, err)
	assert.Equal(t, `{"model":"llama3.1","prompt":"say hi","stream":true}`, string(data))
}
