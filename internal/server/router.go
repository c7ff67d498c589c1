package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter implements [Router] on an [http.ServeMux].
//
// Middleware wraps the whole mux, so unmatched paths pass through it too and [BasicRouter.Use]
// may be called before or after routes are registered.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      []string
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends [Middleware]. The first one added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for a single method on path. HEAD is accepted wherever GET is.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.routes = append(r.routes, strings.ToUpper(method)+" "+path)
	r.mux.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !allows(method, req.Method) {
			w.Header().Set("Allow", strings.ToUpper(method))
			writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
			return
		}
		handler.ServeHTTP(w, req)
	}))
}

// Handler registers every route of handler. The handler does its own method checks.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.routes = append(r.routes, route)
		r.mux.Handle(route, handler)
	}
}

// Routes lists registered patterns in registration order.
func (r *BasicRouter) Routes() []string {
	return slices.Clone(r.routes)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Apply(r.mux).ServeHTTP(w, req)
}

// Apply wraps handler with the middleware stack.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

func allows(registered, method string) bool {
	if strings.EqualFold(registered, method) {
		return true
	}
	return strings.EqualFold(registered, http.MethodGet) && method == http.MethodHead
}
