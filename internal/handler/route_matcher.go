package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Labels for requests no registered route serves
const (
	RouteUnknown          = "unknown"
	RouteMethodNotAllowed = "method_not_allowed"
)

// RouteMatcher names the route serving a request, for metric and trace labels
type RouteMatcher interface {
	Match(r *http.Request) string
}

// MuxRouteMatcher labels requests with the name of their mux route, or its path template when unnamed.
// Unmatched requests share one label so arbitrary paths never create new series.
type MuxRouteMatcher struct {
	Router *mux.Router
}

func (m *MuxRouteMatcher) Match(r *http.Request) string {
	var match mux.RouteMatch
	if !m.Router.Match(r, &match) {
		if errors.Is(match.MatchErr, mux.ErrMethodMismatch) {
			return RouteMethodNotAllowed
		}
		return RouteUnknown
	}

	// a NotFoundHandler matches without a route
	if match.Route == nil {
		return RouteUnknown
	}
	if name := match.Route.GetName(); name != "" {
		return name
	}
	if tmpl, err := match.Route.GetPathTemplate(); err == nil {
		return tmpl
	}
	return RouteUnknown
}
