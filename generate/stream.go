package generate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/randalmurphal/ollamakit/jsonl"
)

// Stream is a lazy, single-pass sequence of decoded chunks.
//
// Each call to Next reads and decodes one line of the response body. Once Next
// returns false the stream is finished: the body is closed and Err reports why,
// nil meaning the server closed the body normally. Close releases the body
// early and is safe to call more than once.
type Stream struct {
	client *Client
	call   *call
	body   io.ReadCloser
	dec    *jsonl.Decoder
	op     string
	strict bool

	chunk      Chunk
	count      int
	err        error
	errYielded bool
	done       bool
	closed     sync.Once
}

// newStream wraps a response body. A strict stream requires every object to
// carry a "response" member.
func newStream(c *Client, cl *call, op string, body io.ReadCloser, strict bool) *Stream {
	return &Stream{
		client: c,
		call:   cl,
		body:   body,
		dec:    jsonl.NewDecoder(body, c.cfg.MaxLineSize),
		op:     op,
		strict: strict,
	}
}

// Next advances to the next chunk. It returns false when the body is
// exhausted, a line fails to decode, or the stream was closed.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}

	line, err := s.dec.Next()
	if errors.Is(err, io.EOF) {
		s.finish(nil)
		return false
	}
	if errors.Is(err, bufio.ErrTooLong) {
		// Oversized lines fail the same way on every attempt.
		s.finish(&DecodeError{Line: s.dec.Line() + 1, Err: bufio.ErrTooLong})
		return false
	}
	if err != nil {
		s.finish(&RequestError{Op: s.op, URL: s.client.Endpoint(), Err: fmt.Errorf("read body: %w", err)})
		return false
	}

	chunk, err := decodeChunk(line, s.dec.Line())
	if err != nil {
		s.finish(err)
		return false
	}
	if s.strict && !chunk.HasResponse() {
		s.finish(&SchemaError{Field: "response", Line: s.dec.Line(), ServerError: chunk.ServerError()})
		return false
	}

	s.client.record(s.call, chunk)
	s.chunk = chunk
	s.count++
	return true
}

// Chunk returns the chunk decoded by the last successful Next.
func (s *Stream) Chunk() Chunk {
	return s.chunk
}

// Text returns the response fragment decoded by the last successful Next.
func (s *Stream) Text() string {
	return s.chunk.Response
}

// Count returns the number of chunks decoded so far.
func (s *Stream) Count() int {
	return s.count
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the response body. Fragments already returned stay valid.
func (s *Stream) Close() error {
	var err error
	s.closed.Do(func() {
		err = s.body.Close()
	})
	if !s.done {
		s.done = true
		s.call.span.AddEvent("abandoned")
		s.call.end(nil, s.count)
	}
	return err
}

// Fragments returns an iterator over the remaining response fragments.
// A failure is yielded once as the final pair with an empty fragment; a
// later range over the same stream yields nothing. Breaking out of the loop
// closes the stream.
//
//	for text, err := range stream.Fragments() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(text)
//	}
func (s *Stream) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for s.Next() {
			if !yield(s.Text(), nil) {
				s.Close()
				return
			}
		}
		if err := s.Err(); err != nil && !s.errYielded {
			s.errYielded = true
			yield("", err)
		}
	}
}

func (s *Stream) finish(err error) {
	s.done = true
	s.err = err
	s.closed.Do(func() {
		_ = s.body.Close()
	})
	s.call.end(err, s.count)
}
