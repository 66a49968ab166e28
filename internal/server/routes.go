package server

import "net/http"

// Routes returns the ServeMux with all transport endpoints: health check at
// the root and the websocket upgrade at /ws.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleHealth)
	mux.HandleFunc("/ws", s.HandleWebSocket)
	return mux
}
