package chat_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/quantedge/relay/internal/chat"
)

// recordedEvent mirrors the outbound wire frame for inspection in tests.
type recordedEvent struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type deliveryReceipt struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// fakeOutbox records every delivered frame. Setting fail makes Deliver
// reject everything, simulating an unreachable connection.
type fakeOutbox struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (f *fakeOutbox) Deliver(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection unreachable")
	}
	f.frames = append(f.frames, append([]byte(nil), payload...))
	return nil
}

func (f *fakeOutbox) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

func (f *fakeOutbox) events(t *testing.T) []recordedEvent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedEvent, 0, len(f.frames))
	for _, frame := range f.frames {
		var evt recordedEvent
		require.NoError(t, json.Unmarshal(frame, &evt))
		out = append(out, evt)
	}
	return out
}

func (f *fakeOutbox) named(t *testing.T, name string) []recordedEvent {
	t.Helper()
	var out []recordedEvent
	for _, evt := range f.events(t) {
		if evt.Name == name {
			out = append(out, evt)
		}
	}
	return out
}

// envelopes decodes the payload of every ReceiveMessage event.
func (f *fakeOutbox) envelopes(t *testing.T) []chat.Envelope {
	t.Helper()
	var out []chat.Envelope
	for _, evt := range f.named(t, chat.EventReceiveMessage) {
		var env chat.Envelope
		require.NoError(t, json.Unmarshal(evt.Payload, &env))
		out = append(out, env)
	}
	return out
}

func (f *fakeOutbox) envelopesOfType(t *testing.T, kind chat.MessageType) []chat.Envelope {
	t.Helper()
	var out []chat.Envelope
	for _, env := range f.envelopes(t) {
		if env.Type == kind {
			out = append(out, env)
		}
	}
	return out
}
