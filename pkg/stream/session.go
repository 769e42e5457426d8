// Package stream turns one streamed model response body into an incrementally
// emitted text sequence.
//
// A Session chains the per-session stages:
//
//	body bytes ─▶ utf8stream.Reader ─▶ sse.Reader ─▶ transform.Registry ─▶ fragments
//
// and checks the assembled text for the completion marker once the stream
// ends. Production is demand-driven: the body is read only when Next needs
// another fragment.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/textstream/pkg/sentinel"
	"github.com/papercomputeco/textstream/pkg/sse"
	"github.com/papercomputeco/textstream/pkg/transform"
	"github.com/papercomputeco/textstream/pkg/utf8stream"
)

// doneData is the data payload OpenAI-compatible providers send as their
// final event. It carries no text.
const doneData = "[DONE]"

// ErrClosed is returned by Next after the session was closed by its owner.
var ErrClosed = errors.New("stream session closed")

// Session is a single streaming pipeline over one response body. Next must
// be called from one goroutine; Close may be called from any goroutine.
type Session struct {
	id       string
	provider string
	ctx      context.Context

	body     io.ReadCloser
	events   *sse.Reader
	registry *transform.Registry
	sentinel *sentinel.Sentinel
	logger   *zap.Logger

	text       strings.Builder
	eventCount int
	fragments  int
	finished   bool
	err        error

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	stop      func() bool
}

// New creates a Session reading body. Cancelling ctx closes body promptly,
// which unblocks a pending read; the session then discards its partial state
// and Next reports the context error.
func New(ctx context.Context, body io.ReadCloser, opts ...Option) *Session {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.registry == nil {
		cfg.registry = transform.Default(cfg.logger)
	}
	if cfg.sentinel == nil {
		cfg.sentinel = sentinel.New(sentinel.Marker)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	s := &Session{
		id:       cfg.id,
		provider: cfg.provider,
		ctx:      ctx,
		body:     body,
		events:   sse.NewReader(utf8stream.NewReader(body, cfg.chunkSize)),
		registry: cfg.registry,
		sentinel: cfg.sentinel,
		logger:   cfg.logger.With(zap.String("session_id", cfg.id), zap.String("provider", cfg.provider)),
	}

	s.stop = context.AfterFunc(ctx, func() {
		s.abort()
	})

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Provider returns the provider identifier the session transforms with.
func (s *Session) Provider() string {
	return s.provider
}

// Next returns the next non-empty text fragment. It returns io.EOF once the
// stream ended cleanly. A body cut mid-character yields an error matching
// utf8stream.ErrTruncated. Once Next has returned an error it keeps
// returning it.
func (s *Session) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}

	for {
		if err := s.interrupted(); err != nil {
			return "", s.fail(err)
		}

		ev, err := s.events.Next()
		if err != nil {
			if ierr := s.interrupted(); ierr != nil {
				return "", s.fail(ierr)
			}
			if errors.Is(err, io.EOF) {
				s.complete()
				return "", io.EOF
			}
			return "", s.fail(fmt.Errorf("reading stream: %w", err))
		}

		s.eventCount++
		if ev.Data == doneData {
			continue
		}

		fragment := s.registry.Transform(s.provider, ev.Name, ev.Data)
		if fragment == "" {
			continue
		}

		if err := s.interrupted(); err != nil {
			return "", s.fail(err)
		}

		s.text.WriteString(fragment)
		s.fragments++
		return fragment, nil
	}
}

// Close releases the response body and discards partial state. It is safe
// to call more than once and concurrently with Next.
func (s *Session) Close() error {
	s.closed.Store(true)
	return s.release()
}

// Result summarizes the session so far. After Next returned io.EOF it holds
// the full text and its completion check.
func (s *Session) Result() Result {
	text := s.text.String()
	return Result{
		ID:        s.id,
		Provider:  s.provider,
		Text:      text,
		Events:    s.eventCount,
		Fragments: s.fragments,
		Finished:  s.finished,
		Check:     s.sentinel.Inspect(&text),
	}
}

// abort is run when the session context is cancelled. It may run before New
// returns, so it leaves the context hook alone.
func (s *Session) abort() {
	s.closed.Store(true)
	_ = s.closeBody()
}

// release detaches the context hook and closes the body.
func (s *Session) release() error {
	s.stop()
	return s.closeBody()
}

// closeBody closes the body exactly once.
func (s *Session) closeBody() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// interrupted reports why the session must stop emitting: the context error
// once ctx is done, ErrClosed after Close, nil otherwise.
func (s *Session) interrupted() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// complete records a clean end of stream.
func (s *Session) complete() {
	s.finished = true
	s.err = io.EOF
	_ = s.release()

	text := s.text.String()
	check := s.sentinel.Inspect(&text)
	s.logger.Debug("stream complete",
		zap.Int("event_count", s.eventCount),
		zap.Int("fragment_count", s.fragments),
		zap.Bool("satisfied", check.Satisfied),
	)
}

// fail records a session-fatal error, releases the body and drops the text
// assembled so far.
func (s *Session) fail(err error) error {
	s.err = err
	_ = s.release()
	s.text.Reset()

	s.logger.Debug("stream failed",
		zap.Int("event_count", s.eventCount),
		zap.Int("fragment_count", s.fragments),
		zap.Error(err),
	)
	return err
}
