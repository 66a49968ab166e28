package chat

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Audience selects which registered connections receive a dispatched event.
type Audience int

const (
	// AudienceAll delivers to every registered connection, sender included.
	AudienceAll Audience = iota
	// AudienceAllExceptSender delivers to everyone but the sending connection.
	AudienceAllExceptSender
	// AudienceSenderOnly delivers to the sending connection alone.
	AudienceSenderOnly
)

// Dispatcher fans a single event out to its audience. It is the one place
// where fan-out and ordering are enforced: the recipient set is a registry
// snapshot taken at dispatch time, the payload is marshaled once, and a send
// failure to one recipient never aborts delivery to the rest.
type Dispatcher struct {
	registry *Registry
	log      zerolog.Logger
}

// NewDispatcher returns a dispatcher bound to the given registry.
func NewDispatcher(registry *Registry, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// Dispatch delivers event to the selected audience. senderID identifies the
// originating connection; it is required for AudienceAllExceptSender and
// AudienceSenderOnly and ignored for AudienceAll.
func (d *Dispatcher) Dispatch(event Event, audience Audience, senderID string) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.log.Error().Err(err).Str("event", event.Name).Msg("could not encode event")
		return
	}

	if audience == AudienceSenderOnly {
		out, ok := d.registry.Get(senderID)
		if !ok {
			return
		}
		d.send(Recipient{ID: senderID, Outbox: out}, event.Name, payload)
		return
	}

	for _, rcpt := range d.registry.Snapshot() {
		if audience == AudienceAllExceptSender && rcpt.ID == senderID {
			continue
		}
		d.send(rcpt, event.Name, payload)
	}
}

func (d *Dispatcher) send(rcpt Recipient, name string, payload []byte) {
	if err := rcpt.Outbox.Deliver(payload); err != nil {
		d.log.Warn().
			Err(err).
			Str("connection_id", rcpt.ID).
			Str("event", name).
			Msg("dropping event for unreachable connection")
	}
}
