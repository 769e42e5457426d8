package stream

import (
	"go.uber.org/zap"

	"github.com/papercomputeco/textstream/pkg/sentinel"
	"github.com/papercomputeco/textstream/pkg/transform"
)

// Option configures a Session created with New.
type Option func(*config)

type config struct {
	provider  string
	registry  *transform.Registry
	sentinel  *sentinel.Sentinel
	logger    *zap.Logger
	chunkSize int
	id        string
}

// WithProvider selects the transformer strategy by provider identifier.
// Without it, event data passes through unchanged.
func WithProvider(provider string) Option {
	return func(c *config) {
		c.provider = provider
	}
}

// WithRegistry overrides the transformer registry. Defaults to
// transform.Default.
func WithRegistry(r *transform.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithSentinel overrides the completion sentinel. Defaults to the
// sentinel.Marker literal.
func WithSentinel(s *sentinel.Sentinel) Option {
	return func(c *config) {
		c.sentinel = s
	}
}

// WithLogger sets the session logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithChunkSize sets the size of each read from the response body.
func WithChunkSize(n int) Option {
	return func(c *config) {
		c.chunkSize = n
	}
}

// WithID sets the session identifier instead of generating one.
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}
