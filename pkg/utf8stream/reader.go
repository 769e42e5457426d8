package utf8stream

import (
	"errors"
	"io"
)

// DefaultChunkSize is the read size used by Reader when none is given.
const DefaultChunkSize = 4096

// Reader pulls byte chunks from a source io.Reader and yields complete text
// fragments. Each call to Next performs at most as many reads as needed to
// produce one non-empty fragment.
//
// ┌──────────────────┐   ┌─────────────┐   ┌───────────────┐
// │ source io.Reader │──▶│ Reassembler │──▶│ Next() string │
// └──────────────────┘   └─────────────┘   └───────────────┘
//
// A Reader is finite and cannot be restarted.
type Reader struct {
	src  io.Reader
	buf  []byte
	re   *Reassembler
	done bool
	err  error
}

// NewReader returns a Reader reading src in chunks of chunkSize bytes.
// A chunkSize <= 0 selects DefaultChunkSize.
func NewReader(src io.Reader, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Reader{
		src: src,
		buf: make([]byte, chunkSize),
		re:  NewReassembler(),
	}
}

// Next returns the next text fragment. It returns io.EOF once the source is
// exhausted with no pending bytes, and a *DecodeError if the source ended
// mid-character or carried malformed bytes. After any error, subsequent
// calls return the same error.
func (r *Reader) Next() (string, error) {
	if r.err != nil {
		return "", r.err
	}

	for !r.done {
		n, readErr := r.src.Read(r.buf)
		if n > 0 {
			text, err := r.re.Feed(r.buf[:n])
			if err != nil {
				r.err = err
				return "", err
			}
			if readErr != nil {
				r.markDone(readErr)
			}
			if text != "" {
				return text, nil
			}
			continue
		}

		if readErr != nil {
			r.markDone(readErr)
		}
	}

	if r.err != nil {
		return "", r.err
	}

	if err := r.re.Finish(); err != nil {
		r.err = err
		return "", err
	}

	r.err = io.EOF
	return "", io.EOF
}

// markDone records the end of the source. Errors other than io.EOF are
// surfaced as-is ahead of any reassembly check.
func (r *Reader) markDone(err error) {
	r.done = true
	if !errors.Is(err, io.EOF) {
		r.err = err
	}
}
