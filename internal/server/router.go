package server

import (
	"net/http"
	"strings"
)

// BasicRouter is the minimal [Router] the login flow needs: an
// [http.ServeMux] with a middleware chain in front of every handler.
type BasicRouter struct {
	mux   *http.ServeMux
	chain []Middleware
}

// NewBasicRouter creates an empty router.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware to the chain. Middleware registered after a handler
// does not apply to it.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle registers a handler for one method and path. Requests with any
// other method get a 405.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	wrapped := r.wrap(handler)
	r.mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		if !strings.EqualFold(req.Method, method) {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wrapped.ServeHTTP(w, req)
	})
}

// Handler registers a [Handler] under every path it declares.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler].
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// wrap applies the chain so the first registered middleware is outermost.
func (r *BasicRouter) wrap(handler http.Handler) http.Handler {
	for i := len(r.chain) - 1; i >= 0; i-- {
		handler = r.chain[i](handler)
	}
	return handler
}
