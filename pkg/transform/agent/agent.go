// Package agent extracts text from agent-platform streams, whose chat-style
// chunks carry deltas made of nested message, messages, content and segments
// fields rather than a single content string.
package agent

import (
	"strings"

	"github.com/papercomputeco/textstream/pkg/extract"
)

// transformer implements transform.Transformer for the agent streaming
// protocol.
type transformer struct{}

func New() *transformer { return &transformer{} }

func (t *transformer) Provider() string {
	return "agent"
}

// Handles reports true for the default "message" event only; lifecycle events
// pass through unchanged.
func (t *transformer) Handles(eventName string) bool {
	return eventName == "message"
}

// Extract concatenates the text of every choices[i].delta in choice order.
// Chunks without a choices array are treated as a bare delta.
func (t *transformer) Extract(tree any) string {
	obj, ok := tree.(map[string]any)
	if !ok {
		return extract.Delta(tree)
	}

	choices, ok := obj["choices"].([]any)
	if !ok {
		return extract.Delta(obj)
	}

	var sb strings.Builder
	for _, c := range choices {
		choice, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if delta, ok := choice["delta"]; ok {
			sb.WriteString(extract.Delta(delta))
		}
	}
	return sb.String()
}
