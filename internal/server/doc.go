// Package server provides HTTP routing, middleware, and cookie sessions for the topten web app.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), so the first one passed to
// [BasicRouter.Use] is the outermost.
//
// The [BasicRouter] implementation uses a chi mux internally. Path parameters are read with [Param].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, returning the [Route] values they serve,
// which lets a handler register all of its routes in one call.
//
// # Sessions
//
// [Sessions] keeps flash messages and a per-session CSRF token in a signed cookie
// (gorilla/sessions). [Sessions.CSRF] verifies the token on every unsafe request.
//
// # Lifecycle
//
// [Serve] binds the listener, runs the server and shuts it down gracefully once the context is canceled.
package server
