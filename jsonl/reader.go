package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollInterval is used when fsnotify is unavailable.
const pollInterval = 100 * time.Millisecond

// Reader reads newline-delimited JSON files such as generation transcripts.
type Reader struct {
	path string
	file *os.File
}

// NewReader opens the file at path.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl file: %w", err)
	}
	return &Reader{path: path, file: file}, nil
}

// Path returns the file path being read.
func (r *Reader) Path() string {
	return r.path
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadAll returns every document in the file in order.
// A line that is not valid JSON fails the whole read.
func (r *Reader) ReadAll() ([]json.RawMessage, error) {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	var docs []json.RawMessage
	dec := NewDecoder(r.file, 0)
	for {
		line, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("scan jsonl: %w", err)
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("line %d: invalid JSON", dec.Line())
		}
		docs = append(docs, append(json.RawMessage(nil), line...))
	}
}

// Tail follows the file and sends each complete line appended to it.
// With fromStart set, lines already present are sent first.
// Lines that are not valid JSON are skipped. The channel is closed when ctx
// is cancelled or the file can no longer be read.
func (r *Reader) Tail(ctx context.Context, fromStart bool) <-chan json.RawMessage {
	ch := make(chan json.RawMessage, 64)

	go func() {
		defer close(ch)

		whence := io.SeekEnd
		if fromStart {
			whence = io.SeekStart
		}
		offset, err := r.file.Seek(0, whence)
		if err != nil {
			return
		}

		t := &tailer{file: r.file, reader: bufio.NewReader(r.file), offset: offset, out: ch}
		if !t.drain(ctx) {
			return
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Debug("fsnotify unavailable, polling transcript", slog.Any("error", err))
			t.poll(ctx)
			return
		}
		defer watcher.Close()

		// Watching the directory survives editors that replace the file.
		if err := watcher.Add(filepath.Dir(r.path)); err != nil {
			slog.Debug("watch transcript dir failed, polling", slog.Any("error", err))
			t.poll(ctx)
			return
		}
		t.watch(ctx, watcher, filepath.Base(r.path))
	}()

	return ch
}

// tailer holds the read position of a Tail call.
type tailer struct {
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	pending []byte
	out     chan<- json.RawMessage
}

func (t *tailer) watch(ctx context.Context, watcher *fsnotify.Watcher, baseName string) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			t.checkTruncate()
			if !t.drain(ctx) {
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Debug("transcript watcher error", slog.Any("error", err))
		}
	}
}

func (t *tailer) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkTruncate()
			if !t.drain(ctx) {
				return
			}
		}
	}
}

// checkTruncate rewinds when the file shrank below the read position.
func (t *tailer) checkTruncate() {
	info, err := t.file.Stat()
	if err != nil || info.Size() >= t.offset {
		return
	}
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return
	}
	t.offset = 0
	t.pending = nil
	t.reader.Reset(t.file)
}

// drain sends every complete line currently readable.
// A trailing partial line is held until its newline arrives.
// Returns false when ctx is done.
func (t *tailer) drain(ctx context.Context) bool {
	for {
		data, err := t.reader.ReadBytes('\n')
		t.offset += int64(len(data))
		if len(data) > 0 {
			t.pending = append(t.pending, data...)
		}
		if err != nil {
			// io.EOF leaves any partial line in pending.
			return ctx.Err() == nil
		}

		line := bytes.TrimSpace(t.pending)
		t.pending = nil
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		select {
		case t.out <- append(json.RawMessage(nil), line...):
		case <-ctx.Done():
			return false
		}
	}
}
