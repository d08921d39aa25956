package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/{$}"

	// Demo API calls, one per access tier
	RouteUnrestrictedCall       = "/unrestrictedCall"
	RouteApplicationCall        = "/applicationCall"
	RouteUserCall               = "/userCall"
	RouteRetrieveVatObligations = "/retrieveVatObligations"

	// OAuth2 Routes
	RouteCallback = "/oauth20/callback"
	RouteSignOut  = "/signout"

	// Static
	RouteWellKnown = "/.well-known/"
)

// Resources on the remote API, relative to the service name.
const (
	unrestrictedEndpoint   = "/world"
	appRestrictedEndpoint  = "/application"
	userRestrictedEndpoint = "/user"
)

// Default period for the VAT obligations query.
const (
	defaultObligationsFrom = "2018-07-01"
	defaultObligationsTo   = "2018-09-30"
)
