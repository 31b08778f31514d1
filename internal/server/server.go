package server

import "net/http"

// Middleware wraps a handler with behavior that runs around every request,
// logging or header rewriting for instance.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it owns, so a router
// can register it without a separate route table.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers and middleware and serves as the top-level
// [http.Handler] for the loopback server.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
