package relay

import "time"

// Config is the relay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// UpstreamURL is the upstream provider URL that request paths are appended to.
	UpstreamURL string

	// ProviderType selects the payload transformer when a request does not
	// name one through the provider header.
	ProviderType string

	// Timeout bounds one upstream exchange, streaming included. Zero disables it.
	Timeout time.Duration

	// ChunkSize is the read size for the upstream body. Zero uses the default.
	ChunkSize int

	// Marker overrides the completion marker checked at the end of a session.
	Marker string
}
