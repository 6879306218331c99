package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"esp8266-web/internal/config"
)

func NewServer(cfg config.Config, logger *slog.Logger, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Chain(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Chain wraps h with recovery, request id, request logging and metrics, in
// that order from the outside in.
func Chain(h http.Handler, logger *slog.Logger) http.Handler {
	h = instrument(h)
	h = requestLogger(h)
	h = requestID(logger, h)
	h = recoverer(h)
	return h
}
