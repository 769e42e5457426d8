// Package utf8stream reassembles text from a stream of raw byte chunks whose
// boundaries may fall in the middle of a multi-byte UTF-8 character.
//
// A Reassembler carries at most one incomplete trailing sequence (0-3 bytes)
// between chunks and never emits a partial character.
package utf8stream

import (
	"unicode/utf8"
)

// maxPending is the longest incomplete sequence that can be carried: a 4-byte
// character missing its final byte.
const maxPending = utf8.UTFMax - 1

// Reassembler is the per-session byte reassembly state. It is not safe for
// concurrent use; each stream session owns its own Reassembler.
type Reassembler struct {
	pending []byte

	// offset counts bytes emitted so far, for error reporting.
	offset int64
}

// NewReassembler returns a Reassembler with no pending bytes.
func NewReassembler() *Reassembler {
	return &Reassembler{pending: make([]byte, 0, maxPending)}
}

// Feed appends chunk to any pending bytes and returns the longest prefix made
// of complete characters. The incomplete tail, if any, is held back for the
// next call. An empty string with a nil error means everything was held.
func (r *Reassembler) Feed(chunk []byte) (string, error) {
	buf := chunk
	if len(r.pending) > 0 {
		buf = make([]byte, 0, len(r.pending)+len(chunk))
		buf = append(buf, r.pending...)
		buf = append(buf, chunk...)
	}

	n := incompleteTail(buf)
	complete := buf[:len(buf)-n]

	if !utf8.Valid(complete) {
		return "", &DecodeError{Err: ErrMalformed, Offset: r.offset + int64(invalidAt(complete))}
	}

	// Copy the held bytes before returning: buf may alias the caller's chunk.
	r.pending = append(r.pending[:0], buf[len(buf)-n:]...)
	r.offset += int64(len(complete))

	return string(complete), nil
}

// Finish reports whether the stream ended cleanly. It returns a DecodeError
// wrapping ErrTruncated when bytes of an unfinished character remain.
func (r *Reassembler) Finish() error {
	if len(r.pending) == 0 {
		return nil
	}

	err := &DecodeError{
		Err:     ErrTruncated,
		Offset:  r.offset,
		Pending: append([]byte(nil), r.pending...),
	}
	r.pending = r.pending[:0]
	return err
}

// Pending returns the number of bytes currently held back.
func (r *Reassembler) Pending() int {
	return len(r.pending)
}

// Reset discards any pending bytes.
func (r *Reassembler) Reset() {
	r.pending = r.pending[:0]
	r.offset = 0
}

// incompleteTail returns how many trailing bytes of b belong to a character
// that has not been fully received yet.
func incompleteTail(b []byte) int {
	for i := 1; i <= maxPending && i <= len(b); i++ {
		c := b[len(b)-i]
		switch {
		case c < utf8.RuneSelf:
			return 0
		case utf8.RuneStart(c):
			if sequenceLen(c) > i {
				return i
			}
			return 0
		}
	}

	// A short run made entirely of continuation bytes has no character
	// boundary to split on: hold all of it.
	if len(b) <= maxPending {
		return len(b)
	}
	return 0
}

// sequenceLen returns the encoded length announced by a UTF-8 lead byte, or 1
// for bytes that cannot start a multi-byte sequence.
func sequenceLen(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// invalidAt returns the index of the first invalid sequence in b.
func invalidAt(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
