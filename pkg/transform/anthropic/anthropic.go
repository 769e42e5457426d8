// Package anthropic
package anthropic

// events is the set of named events in Anthropic's Messages streaming API.
var events = map[string]struct{}{
	"message_start":       {},
	"content_block_start": {},
	"content_block_delta": {},
	"content_block_stop":  {},
	"message_delta":       {},
	"message_stop":        {},
	"ping":                {},
}

// transformer implements transform.Transformer for Anthropic's Messages
// streaming events.
type transformer struct{}

func New() *transformer { return &transformer{} }

func (t *transformer) Provider() string {
	return "anthropic"
}

// Handles claims the lifecycle events too, so their JSON is not forwarded as
// text. Unknown events such as "error" pass through.
func (t *transformer) Handles(eventName string) bool {
	_, ok := events[eventName]
	return ok
}

// Extract returns delta.text for content_block_delta payloads and "" for
// everything else.
func (t *transformer) Extract(tree any) string {
	chunk, ok := tree.(map[string]any)
	if !ok {
		return ""
	}

	if chunkType, _ := chunk["type"].(string); chunkType != "content_block_delta" {
		return ""
	}

	delta, ok := chunk["delta"].(map[string]any)
	if !ok {
		return ""
	}

	text, _ := delta["text"].(string)
	return text
}
