package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quantedge/relay/internal/chat"
)

// Server wires the websocket transport to the chat hub. It owns the upgrader
// with its origin policy and hands every accepted connection a fresh opaque
// identifier.
type Server struct {
	cfg      Config
	hub      *chat.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewServer builds the transport around an existing hub.
func NewServer(cfg Config, hub *chat.Hub, log zerolog.Logger) *Server {
	policy := newOriginPolicy(cfg.AllowedOrigins, log)
	return &Server{
		cfg: cfg,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
		log: log,
	}
}

// HandleWebSocket upgrades the request and starts the connection lifecycle:
// write pump first so the welcome traffic has somewhere to go, then the
// connect transition, then the read pump.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := uuid.NewString()
	client := newClient(id, conn, s.hub, s.cfg, s.log)

	go client.writePump()
	s.hub.Connect(id, client)
	go client.readPump()
}

// HandleHealth reports that the relay is up.
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "QuantEdge relay is running!")
}
