// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// framer and parser for reassembled upstream text. Blocks of lines are split
// on blank lines and each block is parsed into a named Event.
//
// Only the "event" and "data" fields are interpreted. Comment lines and every
// other field ("id", "retry", unknown directives) are ignored.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// DefaultEventName is the event name used when a block has no "event:" line.
const DefaultEventName = "message"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream text stream. Events are values and are not modified after
// Parse returns them.
type Event struct {
	// Name is the SSE event type from the "event:" field, trimmed.
	// Defaults to DefaultEventName.
	Name string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" in source order.
	Data string
}
