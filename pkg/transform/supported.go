package transform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/textstream/pkg/transform/agent"
	"github.com/papercomputeco/textstream/pkg/transform/anthropic"
	"github.com/papercomputeco/textstream/pkg/transform/openai"
)

// Supported provider identifiers.
const (
	Agent     = "agent"
	OpenAI    = "openai"
	Anthropic = "anthropic"
)

// SupportedProviders returns the list of all built-in provider identifiers.
func SupportedProviders() []string {
	return []string{Agent, OpenAI, Anthropic}
}

// New creates the built-in Transformer for the given provider identifier.
// Returns an error if the provider is not recognized.
func New(providerID string) (Transformer, error) {
	switch providerID {
	case Agent:
		return agent.New(), nil
	case OpenAI:
		return openai.New(), nil
	case Anthropic:
		return anthropic.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q (supported: %v)", providerID, SupportedProviders())
	}
}

// Default returns a Registry holding every built-in transformer.
func Default(logger *zap.Logger) *Registry {
	return NewRegistry(logger,
		agent.New(),
		openai.New(),
		anthropic.New(),
	)
}
