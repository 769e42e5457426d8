package config

const (
	// PublisherNop discards session events.
	PublisherNop = "nop"

	// PublisherKafka writes session events to a Kafka topic.
	PublisherKafka = "kafka"
)

const (
	defaultProvider  = "agent"
	defaultChunkSize = 4096
	defaultMarker    = "<END>"

	defaultRelayListen = ":8080"
	defaultUpstream    = "http://localhost:11434"
	defaultTimeout     = "5m"

	defaultPublisher = PublisherNop
	defaultTopic     = "textstream.sessions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Stream: StreamConfig{
			Provider:  defaultProvider,
			ChunkSize: defaultChunkSize,
			Marker:    defaultMarker,
		},
		Relay: RelayConfig{
			Listen:   defaultRelayListen,
			Upstream: defaultUpstream,
			Timeout:  defaultTimeout,
		},
		Events: EventsConfig{
			Publisher: defaultPublisher,
			Topic:     defaultTopic,
		},
	}
}
