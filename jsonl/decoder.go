package jsonl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// DefaultMaxLineSize bounds a single line. Generation chunks are small, but
// the final chunk of a generation may carry a large context array.
const DefaultMaxLineSize = 10 * 1024 * 1024

// Decoder splits a stream into non-empty lines.
// It reads only as much input as the caller asks for, one line per Next call.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	err     error
}

// NewDecoder returns a Decoder reading from r.
// A maxLineSize of zero or less uses DefaultMaxLineSize.
func NewDecoder(r io.Reader, maxLineSize int) *Decoder {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	scanner := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > maxLineSize {
		initial = maxLineSize
	}
	scanner.Buffer(make([]byte, initial), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next non-empty line with surrounding whitespace removed.
// The returned slice is only valid until the following call to Next.
// Returns io.EOF once the input is exhausted; any other error is sticky.
func (d *Decoder) Next() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
	if err := d.scanner.Err(); err != nil {
		d.err = fmt.Errorf("read line %d: %w", d.line+1, err)
		return nil, d.err
	}
	d.err = io.EOF
	return nil, io.EOF
}

// Line returns the 1-based number of the line most recently returned by Next,
// counting blank lines.
func (d *Decoder) Line() int {
	return d.line
}
