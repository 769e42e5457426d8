package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent textstream configuration stored as
// config.toml in the .textstream/ directory.
type Config struct {
	Version int          `toml:"version"`
	Stream  StreamConfig `toml:"stream"`
	Relay   RelayConfig  `toml:"relay"`
	Events  EventsConfig `toml:"events"`
}

// StreamConfig holds settings shared by every decoding session.
type StreamConfig struct {
	Provider  string `toml:"provider,omitempty"`
	ChunkSize uint   `toml:"chunk_size,omitempty"`
	Marker    string `toml:"marker,omitempty"`
}

// RelayConfig holds relay server settings.
type RelayConfig struct {
	Listen   string `toml:"listen,omitempty"`
	Upstream string `toml:"upstream,omitempty"`

	// Timeout bounds a single upstream exchange, as a Go duration string.
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (r RelayConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(r.Timeout)
}

// EventsConfig selects where session-completed events are published.
type EventsConfig struct {
	Publisher string   `toml:"publisher,omitempty"`
	Brokers   []string `toml:"brokers,omitempty"`
	Topic     string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"stream.provider": {
		get: func(c *Config) string { return c.Stream.Provider },
		set: func(c *Config, v string) error { c.Stream.Provider = v; return nil },
	},
	"stream.chunk_size": {
		get: func(c *Config) string {
			if c.Stream.ChunkSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Stream.ChunkSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for stream.chunk_size: %w", err)
			}
			c.Stream.ChunkSize = uint(n)
			return nil
		},
	},
	"stream.marker": {
		get: func(c *Config) string { return c.Stream.Marker },
		set: func(c *Config, v string) error { c.Stream.Marker = v; return nil },
	},
	"relay.listen": {
		get: func(c *Config) string { return c.Relay.Listen },
		set: func(c *Config, v string) error { c.Relay.Listen = v; return nil },
	},
	"relay.upstream": {
		get: func(c *Config) string { return c.Relay.Upstream },
		set: func(c *Config, v string) error { c.Relay.Upstream = v; return nil },
	},
	"relay.timeout": {
		get: func(c *Config) string { return c.Relay.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for relay.timeout: %w", err)
			}
			c.Relay.Timeout = v
			return nil
		},
	},
	"events.publisher": {
		get: func(c *Config) string { return c.Events.Publisher },
		set: func(c *Config, v string) error {
			switch v {
			case PublisherNop, PublisherKafka:
				c.Events.Publisher = v
				return nil
			default:
				return fmt.Errorf("invalid value for events.publisher: %q (available: %s, %s)", v, PublisherNop, PublisherKafka)
			}
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = SplitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// SplitList splits a comma separated value, dropping blank entries.
func SplitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
