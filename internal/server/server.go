package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle. Run and
// Shutdown may be called from different goroutines in either order.
type Server struct {
	mu         sync.Mutex
	httpServer *http.Server
	stopped    bool
}

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	// covers the predictor timeout of a process submit
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second

	defaultHost = "127.0.0.1"
	defaultPort = "8080"
)

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Addr joins host and port into a listen address. It accepts "8080" or ":8080"
// and binds to loopback when host is empty.
func Addr(host, port string) string {
	port = strings.TrimPrefix(strings.TrimSpace(port), ":")
	if port == "" {
		port = defaultPort
	}
	host = strings.TrimSpace(host)
	if host == "" {
		host = defaultHost
	}
	return net.JoinHostPort(host, port)
}

// Run serves handler on addr until Shutdown. A clean shutdown returns nil, and
// Run after Shutdown returns nil without listening.
func (s *Server) Run(addr string, handler http.Handler) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	srv := newHTTPServer(addr, handler)
	s.httpServer = srv
	s.mu.Unlock()

	// a Shutdown between here and ListenAndServe makes it return ErrServerClosed
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
