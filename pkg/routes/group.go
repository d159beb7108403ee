package routes

import (
	"net/http"
	"slices"
)

// Group is a path prefix such as "/documents" with its routes and any
// nested groups.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register installs every route of groups on mux as "METHOD prefix+pattern"
// and returns the patterns in the order they were registered.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		patterns = registerGroup(mux, "", group, patterns)
	}
	return patterns
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group, patterns []string) []string {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
		patterns = append(patterns, pattern)
	}
	for _, child := range group.Children {
		patterns = registerGroup(mux, fullPrefix, child, patterns)
	}
	return slices.Clip(patterns)
}
