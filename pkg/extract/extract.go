// Package extract recovers plain text from the delta node of a streamed model
// response decoded into a generic JSON tree (map[string]any, []any, string,
// and other scalars as produced by encoding/json).
package extract

import (
	"strings"
)

// Field names of the streaming protocol's delta vocabulary.
const (
	FieldText     = "text"
	FieldContent  = "content"
	FieldSegments = "segments"
	FieldMessage  = "message"
	FieldMessages = "messages"
)

// probeFields are checked on the top-level delta node, in order. Every
// present field contributes to the result.
var probeFields = []string{FieldMessage, FieldMessages, FieldContent, FieldSegments}

// descendFields are followed when collecting text below an object, in order.
var descendFields = []string{FieldText, FieldContent, FieldSegments, FieldMessage, FieldMessages}

// Delta returns the text carried by a delta node. Text found under each of
// the top-level message, messages, content and segments fields is
// concatenated in that order. When none of them yields text, the whole node
// is searched instead. Delta never fails and returns "" when the node holds
// no text.
func Delta(node any) string {
	var parts []string

	if obj, ok := node.(map[string]any); ok {
		for _, key := range probeFields {
			child, present := obj[key]
			if !present {
				continue
			}
			collect(child, &parts)
		}
	}

	if len(parts) == 0 {
		collect(node, &parts)
	}

	return strings.Join(parts, "")
}

// Text returns every text leaf reachable from node through the descend
// fields and array elements, concatenated in discovery order.
func Text(node any) string {
	var parts []string
	collect(node, &parts)
	return strings.Join(parts, "")
}

// collect walks node depth-first and appends non-empty string leaves to parts.
func collect(node any, parts *[]string) {
	switch n := node.(type) {
	case string:
		if n != "" {
			*parts = append(*parts, n)
		}
	case []any:
		for _, elem := range n {
			collect(elem, parts)
		}
	case map[string]any:
		for _, key := range descendFields {
			if child, ok := n[key]; ok {
				collect(child, parts)
			}
		}
	default:
		// nil, numbers and booleans carry no text.
	}
}
