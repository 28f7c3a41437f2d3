package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults. Orchestration calls block on
// remote provider round-trips, so the write timeout leaves headroom for the
// slowest Onfido call sequence.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
