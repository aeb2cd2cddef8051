package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	generatePath = "/api/generate"
	tracerName   = "github.com/randalmurphal/ollamakit/generate"
)

// Operation names used in errors, logs and spans.
const (
	OpBuffered  = "buffered"
	OpSingle    = "single"
	OpStreaming = "streaming"
)

// Client sends generation requests to a single server.
// A Client holds no per-call state and is safe for concurrent use; each
// Stream it returns belongs to one consumer.
type Client struct {
	cfg    Config
	tracer trace.Tracer
}

// NewClient creates a generation client.
func NewClient(opts ...Option) *Client {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a generation client from a Config.
func NewClientWithConfig(cfg Config) *Client {
	cfg = cfg.WithDefaults()
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Client{cfg: cfg, tracer: tp.Tracer(tracerName)}
}

// Config returns the client's effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.cfg.BaseURL + generatePath
}

// GenerateBuffered requests a streamed generation and returns every decoded
// chunk in arrival order once the server closes the body.
func (c *Client) GenerateBuffered(ctx context.Context, model, prompt string, opts ...RequestOption) ([]Chunk, error) {
	stream, err := c.openStream(ctx, OpBuffered, newRequest(model, prompt, true, opts), false)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var chunks []Chunk
	for stream.Next() {
		chunks = append(chunks, stream.Chunk())
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// GenerateSingle requests a non-streamed generation and returns the decoded
// object whole. A missing "response" member is reported by Chunk.Text.
func (c *Client) GenerateSingle(ctx context.Context, model, prompt string, opts ...RequestOption) (*Chunk, error) {
	cl, resp, err := c.open(ctx, OpSingle, newRequest(model, prompt, false, opts))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = &RequestError{Op: OpSingle, URL: c.Endpoint(), Err: fmt.Errorf("read body: %w", err)}
		cl.end(err, 0)
		return nil, err
	}

	chunk, err := decodeChunk(bytes.TrimSpace(data), 0)
	if err != nil {
		cl.end(err, 0)
		return nil, err
	}
	c.record(cl, chunk)
	cl.end(nil, 1)
	return &chunk, nil
}

// GenerateStreaming requests a streamed generation and returns a Stream that
// decodes one chunk per call to Next. The caller must Close the stream.
func (c *Client) GenerateStreaming(ctx context.Context, model, prompt string, opts ...RequestOption) (*Stream, error) {
	return c.openStream(ctx, OpStreaming, newRequest(model, prompt, true, opts), true)
}

func (c *Client) openStream(ctx context.Context, op string, req Request, strict bool) (*Stream, error) {
	cl, resp, err := c.open(ctx, op, req)
	if err != nil {
		return nil, err
	}
	return newStream(c, cl, op, resp.Body, strict), nil
}

// open starts a call and sends the request. On success the caller owns the
// response body and must end the call.
func (c *Client) open(ctx context.Context, op string, req Request) (*call, *http.Response, error) {
	cl := c.startCall(ctx, op, req)

	if strings.TrimSpace(req.Model) == "" {
		err := &RequestError{Op: op, Err: ErrModelRequired}
		cl.end(err, 0)
		return nil, nil, err
	}

	resp, err := c.send(cl.ctx, op, req)
	if err != nil {
		cl.end(err, 0)
		return nil, nil, err
	}

	cl.logger.Debug("generate request sent",
		slog.String("model", req.Model),
		slog.Bool("stream", req.Stream),
		slog.Int("status", resp.StatusCode))
	return cl, resp, nil
}

// send issues the HTTP request and checks the status.
func (c *Client) send(ctx context.Context, op string, req Request) (*http.Response, error) {
	endpoint := c.Endpoint()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RequestError{Op: op, URL: endpoint, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Op: op, URL: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Op: op, URL: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RequestError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       errorMessage(data),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return resp, nil
}

// errorMessage extracts {"error": "..."} bodies, falling back to raw text.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

// decodeChunk is the per-object step of every decode path.
func decodeChunk(data []byte, line int) (Chunk, error) {
	var chunk Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return Chunk{}, &DecodeError{Line: line, Data: truncateData(data), Err: err}
	}
	return chunk, nil
}

func (c *Client) record(cl *call, chunk Chunk) {
	if c.cfg.Recorder == nil {
		return
	}
	if err := c.cfg.Recorder.Write(chunk); err != nil {
		cl.logger.Warn("failed to record chunk", slog.Any("error", err))
	}
}

func (c *Client) logger() *slog.Logger {
	if c.cfg.Logger != nil {
		return c.cfg.Logger
	}
	return slog.Default()
}

// call tracks one request/response cycle for logging and tracing.
type call struct {
	ctx    context.Context
	cancel context.CancelFunc
	span   trace.Span
	logger *slog.Logger
	start  time.Time
	once   sync.Once
}

func (c *Client) startCall(ctx context.Context, op string, req Request) *call {
	id := uuid.NewString()

	cancel := context.CancelFunc(func() {})
	if c.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	}

	ctx, span := c.tracer.Start(ctx, "generate."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("generate.request_id", id),
			attribute.String("generate.model", req.Model),
			attribute.Bool("generate.stream", req.Stream),
			attribute.String("server.address", c.cfg.BaseURL),
		))

	return &call{
		ctx:    ctx,
		cancel: cancel,
		span:   span,
		logger: c.logger().With(slog.String("op", op), slog.String("request_id", id)),
		start:  time.Now(),
	}
}

// end finishes the call once; later calls are no-ops.
func (cl *call) end(err error, chunks int) {
	cl.once.Do(func() {
		defer cl.cancel()
		defer cl.span.End()

		cl.span.SetAttributes(attribute.Int("generate.chunks", chunks))
		if err != nil {
			cl.span.RecordError(err)
			cl.span.SetStatus(codes.Error, err.Error())
			cl.logger.Debug("generate call failed",
				slog.Any("error", err),
				slog.Int("chunks", chunks),
				slog.Duration("elapsed", time.Since(cl.start)))
			return
		}
		cl.logger.Debug("generate call finished",
			slog.Int("chunks", chunks),
			slog.Duration("elapsed", time.Since(cl.start)))
	})
}
