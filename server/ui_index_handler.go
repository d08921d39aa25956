package server

import (
	"fmt"
	"net/http"
)

// indexEndpoint is one row of the demo listing.
type indexEndpoint struct {
	Title    string
	Route    string
	Resource string
	Access   string
}

// IndexHandler renders the home page listing the demo endpoints
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := parsePage("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	data := map[string]interface{}{
		"AppName": s.config.GetAppName(),
		"Service": fmt.Sprintf("%s (v%s)", s.config.GetServiceName(), s.config.GetServiceVersion()),
		"Endpoints": []indexEndpoint{
			{Title: "Unrestricted", Route: RouteUnrestrictedCall, Resource: unrestrictedEndpoint, Access: "No credential"},
			{Title: "Application-restricted", Route: RouteApplicationCall, Resource: appRestrictedEndpoint, Access: "Server token"},
			{Title: "User-restricted", Route: RouteUserCall, Resource: userRestrictedEndpoint, Access: "OAuth2 authorization code"},
			{Title: "VAT obligations", Route: RouteRetrieveVatObligations, Resource: s.obligationsResource(), Access: "OAuth2 authorization code"},
		},
		"SignOut": RouteSignOut,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}
