// Package testhelpers provides shared utilities for exercising the relay over
// real websocket connections in integration tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quantedge/relay/internal/chat"
	"github.com/quantedge/relay/internal/server"
)

const testOrigin = "http://localhost:8080"

// Event is the decoded outbound wire frame.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// StartRelay spins up a relay on an ephemeral port and returns the websocket
// URL plus the hub behind it. The server is torn down with the test.
func StartRelay(t *testing.T) (string, *chat.Hub) {
	t.Helper()

	cfg := server.Config{
		AllowedOrigins:  []string{testOrigin},
		MaxMessageSize:  4096,
		SendBufferSize:  256,
		ShutdownTimeout: 5 * time.Second,
	}
	hub := chat.NewHub(zerolog.Nop())
	srv := server.NewServer(cfg, hub, zerolog.Nop())

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws", hub
}

// Dial opens a websocket connection with an allowed Origin header.
func Dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", testOrigin)

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err, "websocket dial failed")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendChat sends a sendMessage frame.
func SendChat(t *testing.T, conn *websocket.Conn, user, message string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{
		"action":  "sendMessage",
		"user":    user,
		"message": message,
	}))
}

// SendTyping sends a userTyping frame.
func SendTyping(t *testing.T, conn *websocket.Conn, user string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{
		"action": "userTyping",
		"user":   user,
	}))
}

// ReadEvent reads and decodes the next event, failing the test if none
// arrives within the timeout.
func ReadEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err, "expected an event before the deadline")

	var evt Event
	require.NoError(t, json.Unmarshal(raw, &evt))
	return evt
}

// ReadEventNamed reads events until one with the given name arrives. Events
// with other names are discarded.
func ReadEventNamed(t *testing.T, conn *websocket.Conn, name string, timeout time.Duration) Event {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		require.Positive(t, remaining, "no %s event before the deadline", name)
		evt := ReadEvent(t, conn, remaining)
		if evt.Name == name {
			return evt
		}
	}
}

// ReadEnvelope reads the next ReceiveMessage event and decodes its envelope.
func ReadEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) chat.Envelope {
	t.Helper()

	evt := ReadEventNamed(t, conn, chat.EventReceiveMessage, timeout)
	var env chat.Envelope
	require.NoError(t, json.Unmarshal(evt.Payload, &env))
	return env
}

// ExpectNoEvent asserts that nothing arrives on the connection for the given
// window.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(window)))
	_, raw, err := conn.ReadMessage()
	require.Error(t, err, "expected silence but received: %s", raw)
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected read timeout, got: %v", err)
}

// DrainConnectTraffic consumes the welcome, tip, and own-presence events a
// fresh connection receives, returning once its UserConnected arrives.
func DrainConnectTraffic(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	ReadEnvelope(t, conn, 2*time.Second)
	ReadEnvelope(t, conn, 2*time.Second)
	ReadEventNamed(t, conn, chat.EventUserConnected, 2*time.Second)
}
