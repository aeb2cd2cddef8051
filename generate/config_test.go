package generate

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.NotNil(t, cfg.HTTPClient)
	assert.Zero(t, cfg.Timeout)
}

func TestConfig_WithDefaults_NormalizesBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "localhost:11434", want: "http://localhost:11434"},
		{in: "http://gpu-box:11434/", want: "http://gpu-box:11434"},
		{in: " https://ollama.internal ", want: "https://ollama.internal"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{BaseURL: tt.in}.WithDefaults().BaseURL)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty config", cfg: Config{}},
		{name: "default config", cfg: DefaultConfig()},
		{name: "bare host", cfg: Config{BaseURL: "localhost:11434"}},
		{name: "bad scheme", cfg: Config{BaseURL: "ftp://localhost:11434"}, wantErr: true},
		{name: "no host", cfg: Config{BaseURL: "http://"}, wantErr: true},
		{name: "negative timeout", cfg: Config{Timeout: -time.Second}, wantErr: true},
		{name: "negative max line size", cfg: Config{MaxLineSize: -1}, wantErr: true},
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

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	client := NewClient(
		WithBaseURL("gpu-box:11434"),
		WithHTTPClient(hc),
		WithTimeout(time.Minute),
		WithMaxLineSize(1024),
	)

	cfg := client.Config()
	assert.Equal(t, "http://gpu-box:11434", cfg.BaseURL)
	assert.Same(t, hc, cfg.HTTPClient)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 1024, cfg.MaxLineSize)
	assert.Equal(t, "http://gpu-box:11434/api/generate", client.Endpoint())
}

func TestRequestError_Temporary(t *testing.T) {
	tests := []struct {
		name string
		err  *RequestError
		want bool
	}{
		{name: "connection refused", err: &RequestError{Err: assert.AnError}, want: true},
		{name: "model required", err: &RequestError{Err: ErrModelRequired}, want: false},
		{name: "rate limited", err: &RequestError{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: &RequestError{StatusCode: http.StatusBadGateway}, want: true},
		{name: "not found", err: &RequestError{StatusCode: http.StatusNotFound}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Temporary())
		})
	}
}
