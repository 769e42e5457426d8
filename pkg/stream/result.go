package stream

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/papercomputeco/textstream/pkg/sentinel"
)

// Result summarizes a streaming session.
type Result struct {
	ID       string
	Provider string

	// Text is the concatenation of every fragment, in order.
	Text string

	// Events counts parsed SSE events, including ones that carried no text.
	Events int

	// Fragments counts the non-empty text fragments emitted.
	Fragments int

	// Finished is true when the stream reached a clean end.
	Finished bool

	// Check is the completion-marker inspection of Text.
	Check sentinel.Check
}

// Collect drains s and returns its Result. The session is closed on return.
// Errors other than a clean end of stream are returned alongside the
// session's counters; a failed session keeps no text.
func Collect(s *Session) (Result, error) {
	defer s.Close()

	for {
		_, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.Result(), nil
			}
			return s.Result(), err
		}
	}
}

// Each calls fn for every fragment of s until the stream ends, fn returns an
// error, or the session fails. The session is closed on return.
func Each(s *Session, fn func(fragment string) error) (Result, error) {
	defer s.Close()

	for {
		fragment, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.Result(), nil
			}
			return s.Result(), err
		}
		if err := fn(fragment); err != nil {
			return s.Result(), err
		}
	}
}

// ReadAll runs a session over a complete in-memory SSE document. It is meant
// for tests and offline decoding.
func ReadAll(body string, opts ...Option) (Result, error) {
	s := New(context.Background(), io.NopCloser(strings.NewReader(body)), opts...)
	return Collect(s)
}
