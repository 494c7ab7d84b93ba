package httpserver

import (
	"net/http"
	"time"
)

const (
	minWriteTimeout = 60 * time.Second
	writeMargin     = 5 * time.Second
)

// New builds the HTTP server. The write timeout always outlasts the per-request
// handler timeout so a slow render still gets its timeout response written.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      WriteTimeout(requestTimeout),
		IdleTimeout:       120 * time.Second,
	}
}

// WriteTimeout derives the server write timeout from the handler timeout.
func WriteTimeout(requestTimeout time.Duration) time.Duration {
	return max(minWriteTimeout, requestTimeout+writeMargin)
}
