package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [chi.Mux] internally for routing, so unknown methods on a known path get 405 with an Allow header.
type BasicRouter struct {
	mux         *chi.Mux
	middlewares []Middleware
	handler     http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	mux := chi.NewRouter()
	return &BasicRouter{
		mux:         mux,
		middlewares: []Middleware{},
		handler:     mux,
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware wraps the whole router, so it also runs for 404 and 405 responses.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
	r.handler = r.Apply(r.mux)
}

// Handle registers a handler for the specified HTTP method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Method(method, path, handler)
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Path, route.Handler)
	}
}

// NotFound sets the handler for unmatched paths.
func (r *BasicRouter) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first), so the first added runs outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

// Param returns a path parameter captured by the route pattern.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
