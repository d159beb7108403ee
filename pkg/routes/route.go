// Package routes declares the ops API as nested groups of method/pattern
// routes and registers them on a ServeMux.
package routes

import "net/http"

// Route is one endpoint. Pattern is relative to its group and may be empty
// for the group root.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
