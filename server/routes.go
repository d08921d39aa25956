package server

import "os"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))

	// API calls
	s.RegisterRouteHandler("GET "+RouteUnrestrictedCall, ChainMiddleware(s.UnrestrictedCallHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteApplicationCall, ChainMiddleware(s.ApplicationCallHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUserCall, ChainMiddleware(s.UserCallHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRetrieveVatObligations, ChainMiddleware(s.RetrieveVatObligationsHandler(), s.APIMiddleware()...))

	// OAuth2
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleware()...))

	if dir := s.config.GetWellKnownDir(); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.RegisterRouteHandler("GET "+RouteWellKnown, ChainMiddleware(s.wellKnownHandler(dir), s.HTMLMiddleware()...))
		}
	}
}
