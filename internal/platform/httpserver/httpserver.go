package httpserver

import (
	"net/http"
	"time"
)

// Timeouts bracket the router's 30s handler timeout: the write side gets
// headroom past it, header-dribbling connections are cut early. Registry
// payloads are small JSON bodies, so a slow read is a misbehaving client,
// not a big upload.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 40 * time.Second
	idleTimeout       = 120 * time.Second
)

// New builds an HTTP server for the registry's API and metrics listeners.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
