package authflow

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-api-client/internal/errors"
	"golang.org/x/oauth2"
)

// Discover resolves the authorize and token endpoints from the issuer's
// OpenID Connect discovery document. The static endpoints are used when
// no issuer is configured.
func Discover(ctx context.Context, issuer string, httpClient *http.Client) (oauth2.Endpoint, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return oauth2.Endpoint{}, errors.Wrapf(err, "[authflow Discover] failed to create OIDC provider for %s", issuer)
	}
	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return endpoint, nil
}
