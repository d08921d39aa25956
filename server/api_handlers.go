package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-api-client/apiclient"
)

// UnrestrictedCallHandler calls the open endpoint with no credential.
func (s *Server) UnrestrictedCallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.invoker.CallUnrestricted(r.Context(), s.serviceRequest(unrestrictedEndpoint))
		if err != nil {
			writeCallError(w, err)
			return
		}
		writeAPIResponse(w, resp)
	}
}

// ApplicationCallHandler calls the application-restricted endpoint with the server token.
func (s *Server) ApplicationCallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.invoker.CallApplication(r.Context(), s.serviceRequest(appRestrictedEndpoint))
		if err != nil {
			writeCallError(w, err)
			return
		}
		writeAPIResponse(w, resp)
	}
}

// UserCallHandler calls the user-restricted endpoint, authorizing first if needed.
func (s *Server) UserCallHandler() http.HandlerFunc {
	return s.protectedHandler(RouteUserCall, func(*http.Request) apiclient.Request {
		return s.serviceRequest(userRestrictedEndpoint)
	})
}

// RetrieveVatObligationsHandler fetches the VAT obligations for the configured VRN.
// The from and to query parameters override the default period.
func (s *Server) RetrieveVatObligationsHandler() http.HandlerFunc {
	return s.protectedHandler(RouteRetrieveVatObligations, func(r *http.Request) apiclient.Request {
		from := r.URL.Query().Get("from")
		if from == "" {
			from = defaultObligationsFrom
		}
		to := r.URL.Query().Get("to")
		if to == "" {
			to = defaultObligationsTo
		}
		return apiclient.Request{
			URL:         s.apiURL(s.obligationsResource()),
			Query:       url.Values{"from": {from}, "to": {to}},
			Accept:      s.config.GetAcceptHeader(),
			ContentType: "application/json",
		}
	})
}

// protectedHandler runs the user-restricted flow for returnPath.
func (s *Server) protectedHandler(returnPath string, build func(*http.Request) apiclient.Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.sessionID(w, r)

		result, err := s.invoker.Invoke(r.Context(), sessionID, returnPath, build(r))
		if err != nil {
			writeCallError(w, err)
			return
		}
		if result.IsRedirect() {
			http.Redirect(w, r, result.RedirectURL, http.StatusFound)
			return
		}
		writeAPIResponse(w, result.Response)
	}
}

func (s *Server) serviceRequest(resource string) apiclient.Request {
	return apiclient.Request{
		URL:    s.apiURL(s.config.GetServiceName() + resource),
		Accept: s.config.GetAcceptHeader(),
	}
}

func (s *Server) obligationsResource() string {
	return "organisations/vat/" + s.config.GetVRN() + "/obligations"
}

func (s *Server) apiURL(path string) string {
	return strings.TrimRight(s.config.GetAPIBaseURL(), "/") + "/" + strings.TrimLeft(path, "/")
}
