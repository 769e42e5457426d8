// Package transform maps (provider, event) pairs to strategies that turn a
// raw SSE event payload into the plain text the provider meant to stream.
package transform

// Transformer extracts streamed text from one provider's event payloads.
// Implementations must be stateless so a single instance can serve every
// concurrent session.
type Transformer interface {
	// Provider returns the provider identifier this transformer applies to
	// (e.g., "agent", "openai", "anthropic").
	Provider() string

	// Handles reports whether events with the given name carry content this
	// transformer understands. Other events pass through the registry
	// unchanged.
	Handles(eventName string) bool

	// Extract returns the text carried by a decoded JSON payload. It never
	// fails; payloads without text yield "".
	Extract(tree any) string
}
