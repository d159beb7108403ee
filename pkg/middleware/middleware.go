// Package middleware provides HTTP middleware for the ops API.
package middleware

import "net/http"

// Chain wraps handler with mws so that the first middleware is outermost.
func Chain(handler http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
