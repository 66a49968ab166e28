// Package chat implements the connection, presence, and broadcast core of the
// relay: the registry of live connections, the envelope model carried over the
// wire, the auto-response rule engine, and the dispatcher that fans events out
// to their audience.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies who authored an envelope.
type MessageType string

const (
	MessageTypeUser    MessageType = "user"
	MessageTypeSystem  MessageType = "system"
	MessageTypeBot     MessageType = "bot"
	MessageTypeError   MessageType = "error"
	MessageTypeSuccess MessageType = "success"
)

// Envelope is the canonical shape of a single chat event. Envelopes are
// immutable once constructed; the core keeps no history of them.
type Envelope struct {
	User      string      `json:"user"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	MessageID string      `json:"messageId"`
	Type      MessageType `json:"type"`
}

// NewEnvelope stamps a fresh envelope with a process-unique identifier and
// the current UTC instant.
func NewEnvelope(user, message string, kind MessageType) Envelope {
	return Envelope{
		User:      user,
		Message:   message,
		Timestamp: time.Now().UTC(),
		MessageID: uuid.NewString(),
		Type:      kind,
	}
}
