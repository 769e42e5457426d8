package transform

import (
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// errUndecodable is reported when a payload is not JSON, even after undoing
// one level of string escaping.
var errUndecodable = errors.New("payload is not valid JSON")

// unescaper undoes one level of JSON string escaping.
var unescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`)

// Registry is an ordered, read-only table of transformers. Lookups scan the
// table in registration order and the first match wins. A Registry is safe
// for concurrent use once constructed.
type Registry struct {
	transformers []Transformer
	logger       *zap.Logger
}

// NewRegistry creates a Registry over the given transformers. A nil logger
// disables diagnostics.
func NewRegistry(logger *zap.Logger, transformers ...Transformer) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		transformers: append([]Transformer(nil), transformers...),
		logger:       logger,
	}
}

// Lookup returns the first transformer registered for providerID that handles
// eventName.
func (r *Registry) Lookup(providerID, eventName string) (Transformer, bool) {
	for _, t := range r.transformers {
		if t.Provider() == providerID && t.Handles(eventName) {
			return t, true
		}
	}
	return nil, false
}

// Providers returns the distinct provider identifiers in registration order.
func (r *Registry) Providers() []string {
	seen := make(map[string]struct{}, len(r.transformers))
	providers := make([]string, 0, len(r.transformers))
	for _, t := range r.transformers {
		if _, ok := seen[t.Provider()]; ok {
			continue
		}
		seen[t.Provider()] = struct{}{}
		providers = append(providers, t.Provider())
	}
	return providers
}

// Transform returns the text carried by rawData for the given provider and
// event. Unmatched (provider, event) pairs return rawData unchanged. A
// matched payload that cannot be decoded is logged at warn level and also
// returned unchanged, so one bad event never ends a stream.
func (r *Registry) Transform(providerID, eventName, rawData string) string {
	t, ok := r.Lookup(providerID, eventName)
	if !ok {
		return rawData
	}

	if strings.TrimSpace(rawData) == "" {
		return rawData
	}

	tree, err := decodePayload(rawData)
	if err != nil {
		r.logger.Warn("could not decode event payload, passing through",
			zap.String("provider", providerID),
			zap.String("event", eventName),
			zap.Int("payload_bytes", len(rawData)),
			zap.Error(err),
		)
		r.logger.Debug("undecodable event payload",
			zap.String("provider", providerID),
			zap.String("payload", rawData),
		)
		return rawData
	}

	return t.Extract(tree)
}

// decodePayload parses raw as JSON. Providers that double-encode nested JSON
// send either a JSON string holding a document, or a document whose quotes
// are still backslash-escaped; both are unwrapped once.
func decodePayload(raw string) (any, error) {
	var tree any
	if err := json.Unmarshal([]byte(raw), &tree); err == nil {
		if s, ok := tree.(string); ok {
			if inner, ok := decodeDocument(s); ok {
				return inner, nil
			}
		}
		return tree, nil
	}

	unescaped := strings.TrimSpace(raw)
	if len(unescaped) >= 2 && unescaped[0] == '"' && unescaped[len(unescaped)-1] == '"' {
		unescaped = unescaped[1 : len(unescaped)-1]
	}
	unescaped = unescaper.Replace(unescaped)

	if unescaped != raw {
		if err := json.Unmarshal([]byte(unescaped), &tree); err == nil {
			return tree, nil
		}
	}

	return nil, errUndecodable
}

// decodeDocument parses s when it looks like a JSON object or array.
func decodeDocument(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}

	var tree any
	if err := json.Unmarshal([]byte(trimmed), &tree); err != nil {
		return nil, false
	}
	return tree, true
}
