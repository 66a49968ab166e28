package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/quantedge/relay/internal/chat"
)

// NewHTTPServer creates the HTTP server with production timeout defaults.
func NewHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Shutdown drains the HTTP server, then closes every live websocket through
// the hub so their pump goroutines can exit.
func Shutdown(srv *http.Server, hub *chat.Hub, timeout time.Duration, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Msg("shutting down HTTP server")
	err := srv.Shutdown(ctx)
	hub.CloseAll()
	if err != nil {
		return errors.Wrap(err, "http server shutdown")
	}
	log.Info().Msg("shutdown complete")
	return nil
}
