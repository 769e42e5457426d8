package sse

import (
	"errors"
	"io"
)

// TextSource yields reassembled text fragments. It returns io.EOF when the
// stream ended cleanly. utf8stream.Reader satisfies it.
type TextSource interface {
	Next() (string, error)
}

// Reader reads SSE events from a TextSource. Next pulls text only when no
// complete block is buffered, so at most one partial block is held at a time.
//
// ┌────────────────────┐
// │ TextSource.Next()  │
// └────────────────────┘
// │
// ▼
// ┌────────────────────┐   ┌──────────────┐
// │ Framer (blocks)    │──▶│ Parse(block) │
// └────────────────────┘   └──────────────┘
// │
// ▼
// ┌────────────────────┐
// │      Event         │
// └────────────────────┘
type Reader struct {
	src    TextSource
	framer *Framer
	eof    bool
}

// NewReader returns a Reader that frames and parses events from src.
func NewReader(src TextSource) *Reader {
	return &Reader{
		src:    src,
		framer: NewFramer(),
	}
}

// Next returns the next parsed event. It blocks until a complete event is
// available (terminated by a blank line in the stream) or the source ends.
// Next returns nil, io.EOF when the source is exhausted; a trailing block
// without a final blank line is still yielded first. Source errors other than
// io.EOF are returned unchanged.
func (r *Reader) Next() (*Event, error) {
	for {
		for {
			block, ok := r.framer.Next()
			if !ok {
				break
			}
			if ev, ok := Parse(block); ok {
				return ev, nil
			}
		}

		if r.eof {
			if block, ok := r.framer.Flush(); ok {
				if ev, ok := Parse(block); ok {
					return ev, nil
				}
			}
			return nil, io.EOF
		}

		text, err := r.src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.eof = true
				continue
			}
			r.framer.Reset()
			return nil, err
		}

		r.framer.Write(text)
	}
}

// Buffered returns the number of framed-but-unparsed bytes held by the reader.
func (r *Reader) Buffered() int {
	return r.framer.Buffered()
}
