package chat

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Hub orchestrates the session lifecycle: it registers presence on connect,
// routes inbound messages through the dispatcher and the rule engine, and
// deregisters on disconnect. Each method is invoked from the owning
// connection's goroutine; dispatch calls issued from one session reach any
// single recipient in issue order.
type Hub struct {
	registry   *Registry
	dispatcher *Dispatcher
	rules      *RuleEngine
	log        zerolog.Logger
}

// NewHub wires a hub with its own registry, dispatcher, and rule engine.
func NewHub(log zerolog.Logger) *Hub {
	registry := NewRegistry()
	return &Hub{
		registry:   registry,
		dispatcher: NewDispatcher(registry, log),
		rules:      NewRuleEngine(registry.Count),
		log:        log,
	}
}

// Count reports how many connections are currently registered.
func (h *Hub) Count() int {
	return h.registry.Count()
}

// Connect registers a new connection, greets it with the welcome and tip
// messages, and announces its presence to everyone.
func (h *Hub) Connect(connectionID string, out Outbox) {
	h.registry.Add(connectionID, out)

	welcome := NewEnvelope(systemName,
		fmt.Sprintf("🎉 Welcome to the chat! You're connected as %s...", shortID(connectionID)),
		MessageTypeSystem)
	h.dispatcher.Dispatch(NewMessageEvent(welcome), AudienceSenderOnly, connectionID)

	tip := NewEnvelope(systemName, "💡 Tip: Type /help to see available commands", MessageTypeSystem)
	h.dispatcher.Dispatch(NewMessageEvent(tip), AudienceSenderOnly, connectionID)

	h.dispatcher.Dispatch(Event{
		Name:    EventUserConnected,
		Payload: PresencePayload{ConnectionID: connectionID},
	}, AudienceAll, connectionID)

	h.log.Info().
		Str("connection_id", connectionID).
		Int("online", h.registry.Count()).
		Msg("connection registered")
}

// Disconnect deregisters a connection and announces its departure together
// with the remaining user count. Unknown identifiers are a no-op, so a
// double disconnect produces no duplicate announcements. reason, when
// non-nil, records an abnormal termination.
func (h *Hub) Disconnect(connectionID string, reason error) {
	if !h.registry.Remove(connectionID) {
		return
	}
	remaining := h.registry.Count()

	evt := h.log.Info().Str("connection_id", connectionID).Int("online", remaining)
	if reason != nil {
		evt = evt.Err(reason)
	}
	evt.Msg("connection deregistered")

	departure := NewEnvelope(systemName,
		fmt.Sprintf("👋 A user has left the chat. %d user(s) remaining.", remaining),
		MessageTypeSystem)
	h.dispatcher.Dispatch(NewMessageEvent(departure), AudienceAll, connectionID)

	h.dispatcher.Dispatch(Event{
		Name:    EventUserDisconnected,
		Payload: PresencePayload{ConnectionID: connectionID},
	}, AudienceAll, connectionID)
}

// SendMessage broadcasts a user message to everyone, confirms delivery to
// the sender, and emits whatever auto-responses the message triggers.
// Delayed responses run on their own goroutines so one sender's simulated
// thinking never blocks another session.
func (h *Hub) SendMessage(connectionID, user, text string) {
	env := NewEnvelope(user, text, MessageTypeUser)
	h.dispatcher.Dispatch(NewMessageEvent(env), AudienceAll, connectionID)

	h.dispatcher.Dispatch(Event{
		Name: EventMessageDelivered,
		Payload: DeliveryReceipt{
			MessageID: env.MessageID,
			Status:    "Delivered",
			Timestamp: time.Now().UTC(),
		},
	}, AudienceSenderOnly, connectionID)

	for _, resp := range h.rules.Evaluate(user, text) {
		if resp.Delay > 0 {
			go h.emitAfter(resp, connectionID)
			continue
		}
		h.emit(resp, connectionID)
	}
}

// UserTyping relays a typing indicator to everyone except the sender. No
// envelope is minted and the registry is untouched.
func (h *Hub) UserTyping(connectionID, user string) {
	h.dispatcher.Dispatch(Event{
		Name:    EventUserTyping,
		Payload: TypingPayload{User: user},
	}, AudienceAllExceptSender, connectionID)
}

// CloseAll deregisters every connection and closes outboxes that support it.
// Used during process shutdown; no departure traffic is emitted.
func (h *Hub) CloseAll() {
	for _, rcpt := range h.registry.Snapshot() {
		h.registry.Remove(rcpt.ID)
		if closer, ok := rcpt.Outbox.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				h.log.Debug().Err(err).Str("connection_id", rcpt.ID).Msg("error closing connection")
			}
		}
	}
}

func (h *Hub) emit(resp AutoResponse, senderID string) {
	env := NewEnvelope(resp.From, resp.Text, resp.Type)
	h.dispatcher.Dispatch(NewMessageEvent(env), resp.Audience, senderID)
}

// emitAfter sleeps out the simulated-thinking delay before minting and
// dispatching the envelope. Runs outside any lock; the audience is resolved
// against the registry as it stands after the delay.
func (h *Hub) emitAfter(resp AutoResponse, senderID string) {
	time.Sleep(resp.Delay)
	h.emit(resp, senderID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
