package authflow

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-api-client/internal/config"
	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/jrsteele09/go-api-client/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every call to the token endpoint.
const DefaultTimeout = 30 * time.Second

// Engine runs the client side of the OAuth2 Authorization Code grant. It
// holds no per-session state: it turns a code or a stale token into a
// fresh token.
type Engine struct {
	oauth2Config *oauth2.Config
	httpClient   *http.Client
	timeout      time.Duration
}

// Option configures the Engine.
type Option func(*Engine)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		e.httpClient = c
	}
}

// WithTimeout sets the bound on each token endpoint call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithEndpoint overrides the authorize and token endpoints, e.g. with the
// result of Discover.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(e *Engine) {
		e.oauth2Config.Endpoint.AuthURL = endpoint.AuthURL
		e.oauth2Config.Endpoint.TokenURL = endpoint.TokenURL
	}
}

// New builds the engine from the frozen configuration.
func New(cfg config.OAuthConfig, opts ...Option) *Engine {
	e := &Engine{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			RedirectURL:  cfg.GetRedirectURI(),
			Scopes:       cfg.GetScopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.GetAuthorizeURL(),
				TokenURL:  cfg.GetTokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.httpClient == nil {
		e.httpClient = &http.Client{Timeout: e.timeout}
	}
	return e
}

// AuthorizationURL returns the provider's authorize endpoint with
// client_id, redirect_uri, response_type=code and scope. It is a pure
// function of the configuration.
func (e *Engine) AuthorizationURL() string {
	return e.oauth2Config.AuthCodeURL("")
}

// Exchange swaps an authorization code for a token. Any failure is an
// *ExchangeFailedError.
func (e *Engine) Exchange(ctx context.Context, code string) (token.Token, error) {
	if code == "" {
		return token.Token{}, newExchangeFailed(errors.ErrMissingCode)
	}

	ctx, cancel := e.callContext(ctx)
	defer cancel()

	t, err := e.oauth2Config.Exchange(ctx, code)
	if err != nil {
		log.Err(err).Msg("Access token error")
		return token.Token{}, newExchangeFailed(err)
	}

	tok := token.FromOAuth2(t)
	log.Debug().Stringer("token", tok).Msg("Got token")
	return tok, nil
}

// Refresh exchanges the token's refresh token for a new Token. The stale
// token is left untouched. Any failure is a *RefreshFailedError; there is
// no automatic retry.
func (e *Engine) Refresh(ctx context.Context, stale token.Token) (token.Token, error) {
	if !stale.CanRefresh() {
		return token.Token{}, newRefreshFailed(errors.ErrNoRefreshToken)
	}

	ctx, cancel := e.callContext(ctx)
	defer cancel()

	// Only the refresh token is handed over so x/oauth2 never treats the
	// stale access token as still valid.
	src := e.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: stale.RefreshToken()})
	t, err := src.Token()
	if err != nil {
		log.Err(err).Msg("Error refreshing token")
		return token.Token{}, newRefreshFailed(err)
	}

	tok := token.FromOAuth2(t)
	log.Debug().Stringer("token", tok).Msg("Refreshed token")
	return tok, nil
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	return context.WithTimeout(ctx, e.timeout)
}
