// Package openai
package openai

import "strings"

// transformer implements transform.Transformer for OpenAI's Chat Completions
// streaming chunks.
type transformer struct{}

func New() *transformer { return &transformer{} }

func (t *transformer) Provider() string {
	return "openai"
}

func (t *transformer) Handles(eventName string) bool {
	return eventName == "message"
}

// Extract returns choices[i].delta.content for every choice, in order.
func (t *transformer) Extract(tree any) string {
	chunk, ok := tree.(map[string]any)
	if !ok {
		return ""
	}

	choices, ok := chunk["choices"].([]any)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, c := range choices {
		choice, ok := c.(map[string]any)
		if !ok {
			continue
		}
		delta, ok := choice["delta"].(map[string]any)
		if !ok {
			continue
		}
		if content, ok := delta["content"].(string); ok {
			sb.WriteString(content)
		}
	}
	return sb.String()
}
