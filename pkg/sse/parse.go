package sse

import (
	"strings"
)

// Parse parses one already-delimited block into an Event. It reports false
// when the block contains only whitespace, or only lines that are ignored
// (comments and unrecognized fields). Parse is pure and keeps no state between calls.
func Parse(block string) (*Event, bool) {
	if strings.TrimSpace(block) == "" {
		return nil, false
	}

	ev := &Event{Name: DefaultEventName}
	var (
		data []string
		seen bool
	)

	for line := range strings.SplitSeq(block, "\n") {
		line = strings.TrimSuffix(line, "\r")

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch field {
		case "event":
			seen = true
			if name := strings.TrimSpace(value); name != "" {
				ev.Name = name
			}
		case "data":
			seen = true
			// Strip a single leading space after the colon.
			data = append(data, strings.TrimPrefix(value, " "))
		default:
			// * Comment lines (empty field name) are skipped.
			// * "id" and "retry" are not needed for text extraction.
			// * Other unknown fields are ignored.
		}
	}

	if !seen {
		return nil, false
	}

	ev.Data = strings.Join(data, "\n")
	return ev, true
}
