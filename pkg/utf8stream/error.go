package utf8stream

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates the byte stream ended in the middle of a
	// multi-byte character.
	ErrTruncated = errors.New("truncated utf-8 sequence at end of stream")

	// ErrMalformed indicates bytes that are not valid UTF-8 regardless of
	// how the stream was chunked.
	ErrMalformed = errors.New("malformed utf-8 sequence")
)

// DecodeError is returned when reassembly fails. It wraps ErrTruncated or
// ErrMalformed so callers can match with errors.Is.
type DecodeError struct {
	Err error

	// Offset is the position in the decoded byte stream where the failure
	// begins.
	Offset int64

	// Pending holds the leftover bytes for truncation errors.
	Pending []byte
}

func (e *DecodeError) Error() string {
	if len(e.Pending) > 0 {
		return fmt.Sprintf("%v: %d pending byte(s) % x at offset %d", e.Err, len(e.Pending), e.Pending, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
