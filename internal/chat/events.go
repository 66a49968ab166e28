package chat

import "time"

// Outbound event names recognized by clients.
const (
	EventReceiveMessage   = "ReceiveMessage"
	EventMessageDelivered = "MessageDelivered"
	EventUserConnected    = "UserConnected"
	EventUserDisconnected = "UserDisconnected"
	EventUserTyping       = "UserTyping"
)

// Event is the outbound wire frame: a named event plus its payload, sent to
// each recipient as one JSON-encoded websocket message.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// NewMessageEvent wraps an envelope in the ReceiveMessage event.
func NewMessageEvent(env Envelope) Event {
	return Event{Name: EventReceiveMessage, Payload: env}
}

// DeliveryReceipt confirms to the original sender that its message was
// dispatched. Ephemeral; never persisted and never part of the envelope model.
type DeliveryReceipt struct {
	MessageID string    `json:"messageId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// PresencePayload carries the connection identifier of a joining or
// departing connection.
type PresencePayload struct {
	ConnectionID string `json:"connectionId"`
}

// TypingPayload carries the display name of a user currently typing.
type TypingPayload struct {
	User string `json:"user"`
}
