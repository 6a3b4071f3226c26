// package server contains routing, middleware and session handling for the topten web app
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, request ids, panic recovery and CSRF checks.
type Middleware func(http.Handler) http.Handler

// Route binds a method and path pattern to a handler.
//
// Patterns use chi syntax, e.g. /add_movie/{id}.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Handler defines the interface for a group of related endpoints.
// Implementations declare their routes so the router can register them in one call.
type Handler interface {
	Routes() []Route // Routes returns the routes this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ShutdownTimeout bounds how long [Serve] waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// NewHTTPServer creates an [http.Server] with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve runs srv on ln until ctx is canceled, then shuts it down gracefully.
//
// ready, when non-nil, is called with the listening address once the listener is bound.
func Serve(ctx context.Context, srv *http.Server, logger *log.Logger, ready func(addr string)) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	addr := ln.Addr().String()
	logger.Info("server listening", "addr", addr)
	if ready != nil {
		ready(addr)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
