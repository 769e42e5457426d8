// Package eventstream defines the transport-neutral events emitted when a
// relayed stream session ends, and the Publisher contract backends implement.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSessionCompleted is emitted after a relayed session ends,
	// successfully or not.
	EventTypeSessionCompleted = "textstream.session.completed"
)

// SessionCompletedEvent is a transport-neutral event payload for a finished session.
type SessionCompletedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	RequestMeta   RequestMeta `json:"request_meta"`
	Session       SessionMeta `json:"session"`
}

// EventSource identifies where the session originated.
type EventSource struct {
	Provider string `json:"provider"`
	Upstream string `json:"upstream,omitempty"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	Path        string    `json:"path,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	HTTPStatus  int       `json:"http_status"`
}

// SessionMeta describes what the session produced.
type SessionMeta struct {
	ID        string `json:"id"`
	Events    int    `json:"events"`
	Fragments int    `json:"fragments"`
	Satisfied bool   `json:"satisfied"`
	Content   string `json:"content"`
	Error     string `json:"error,omitempty"`
}

// NewSessionCompletedEvent stamps a payload with the current schema, a fresh
// event ID and the emission time.
func NewSessionCompletedEvent(source EventSource, meta RequestMeta, session SessionMeta) *SessionCompletedEvent {
	if meta.DurationMs == 0 && !meta.StartedAt.IsZero() && !meta.CompletedAt.IsZero() {
		meta.DurationMs = meta.CompletedAt.Sub(meta.StartedAt).Milliseconds()
	}

	return &SessionCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSessionCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		RequestMeta:   meta,
		Session:       session,
	}
}
