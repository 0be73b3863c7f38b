package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds the HTTP server. There is no write timeout because the
// identity lookup is bounded only by the caller's request context. Server
// errors go through logger.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
