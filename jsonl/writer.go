package jsonl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer appends JSON documents to an output, one per line.
// Writer is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
}

// NewWriter returns a Writer on w. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Create opens path for appending, creating it if needed.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return &Writer{w: f, closer: f, path: path}, nil
}

// Path returns the file path for writers made by Create.
func (w *Writer) Path() string {
	return w.path
}

// Write marshals v and appends it as a single line.
func (w *Writer) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}
	return w.WriteRaw(data)
}

// WriteRaw appends an already-encoded JSON document as a single line.
// data must not contain a newline.
func (w *Writer) WriteRaw(data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return os.ErrClosed
	}
	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// Close releases the underlying file, if any. Later writes fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.w = nil
	if w.closer != nil {
		c := w.closer
		w.closer = nil
		return c.Close()
	}
	return nil
}
