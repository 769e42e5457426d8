package sse

import (
	"strings"
)

const blockDelimiter = "\n\n"

// Framer splits a continuous text stream into raw event blocks on blank-line
// boundaries. Text is appended with Write as it is reassembled; complete
// blocks are popped with Next. A Framer belongs to a single stream session.
type Framer struct {
	// pending holds text not yet split into blocks.
	pending string

	// cr is set when the last written fragment ended in '\r', so a "\r\n"
	// pair split across writes is still normalized.
	cr bool
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Write appends reassembled text to the framer.
func (f *Framer) Write(text string) {
	if text == "" {
		return
	}

	if f.cr {
		f.cr = false
		text = strings.TrimPrefix(text, "\n")
		f.pending += "\n"
	}
	if strings.HasSuffix(text, "\r") {
		f.cr = true
		text = text[:len(text)-1]
	}

	f.pending += normalizeNewlines(text)
}

// Next returns the next complete block, without its trailing delimiter.
// It reports false when no complete block is buffered. Runs of blank lines
// between blocks produce no blocks.
func (f *Framer) Next() (string, bool) {
	for {
		idx := strings.Index(f.pending, blockDelimiter)
		if idx < 0 {
			return "", false
		}

		block := f.pending[:idx]
		f.pending = f.pending[idx+len(blockDelimiter):]

		if block != "" {
			return block, true
		}
	}
}

// Flush returns whatever partial block remains at end of stream and resets
// the framer. It reports false when nothing but whitespace remains.
func (f *Framer) Flush() (string, bool) {
	rest := f.pending
	if f.cr {
		rest += "\n"
	}
	f.Reset()

	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return strings.TrimRight(rest, "\n"), true
}

// Buffered returns the number of bytes waiting to be framed.
func (f *Framer) Buffered() int {
	return len(f.pending)
}

// Reset discards any buffered text.
func (f *Framer) Reset() {
	f.pending = ""
	f.cr = false
}

// normalizeNewlines converts CRLF and lone CR line endings to LF.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
