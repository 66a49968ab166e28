package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/quantedge/relay/internal/chat"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

var (
	errConnectionClosed = errors.New("connection closed")
	errSendBufferFull   = errors.New("send buffer full")
)

// Frame actions accepted from clients.
const (
	actionSendMessage = "sendMessage"
	actionUserTyping  = "userTyping"
)

// inboundFrame is the JSON frame clients send over the socket.
type inboundFrame struct {
	Action  string `json:"action"`
	User    string `json:"user"`
	Message string `json:"message"`
}

// Client owns one websocket connection: its identifier, the buffered outbound
// channel drained by the write pump, and the read pump that feeds inbound
// frames to the hub. It implements chat.Outbox so the dispatcher can reach it.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *chat.Hub
	send chan []byte
	log  zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(id string, conn *websocket.Conn, hub *chat.Hub, cfg Config, log zerolog.Logger) *Client {
	conn.SetReadLimit(cfg.MaxMessageSize)
	return &Client{
		id:   id,
		conn: conn,
		hub:  hub,
		send: make(chan []byte, cfg.SendBufferSize),
		log:  log.With().Str("connection_id", id).Logger(),
	}
}

// Deliver queues a payload for the write pump without blocking. It fails once
// the connection is closed or its buffer is full; the dispatcher treats either
// as a skipped recipient.
func (c *Client) Deliver(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnectionClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close tears the connection down without going through the read pump. Used
// by the hub during process shutdown.
func (c *Client) Close() error {
	c.markClosed()
	return c.conn.Close()
}

// markClosed flips the closed flag and closes the send channel exactly once,
// which stops the write pump after it drains.
func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump reads frames until the connection dies, then runs the disconnect
// transition. An unexpected close error is surfaced to the hub as the
// disconnect reason.
func (c *Client) readPump() {
	var reason error
	defer func() {
		c.hub.Disconnect(c.id, reason)
		c.markClosed()
		_ = c.conn.Close()
	}()

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn().Err(err).Msg("could not set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				reason = err
			}
			return
		}
		c.handleFrame(raw)
	}
}

func (c *Client) handleFrame(raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.log.Warn().Err(err).Msg("discarding malformed frame")
		return
	}

	switch frame.Action {
	case actionSendMessage:
		c.hub.SendMessage(c.id, frame.User, frame.Message)
	case actionUserTyping:
		c.hub.UserTyping(c.id, frame.User)
	default:
		c.log.Warn().Str("action", frame.Action).Msg("discarding frame with unknown action")
	}
}

// writePump drains the send channel onto the socket, one event per text
// frame, and keeps the connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
