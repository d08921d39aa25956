package authflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-api-client/authflow"
	"github.com/jrsteele09/go-api-client/internal/config"
	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/jrsteele09/go-api-client/internal/fakeapi"
	"github.com/jrsteele09/go-api-client/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID     = "client-1"
	testClientSecret = "secret-1"
	testRedirectURI  = "http://localhost:8080/oauth20/callback"
)

func newConfig(baseURL string) config.Config {
	return config.New(config.Settings{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURI:  testRedirectURI,
		APIBaseURL:   baseURL,
		Scope:        "hello read:vat",
	})
}

func TestAuthorizationURLIsDeterministic(t *testing.T) {
	engine := authflow.New(newConfig("https://test-api.service.hmrc.gov.uk/"))

	first := engine.AuthorizationURL()
	for i := 0; i < 10; i++ {
		require.Equal(t, first, engine.AuthorizationURL())
	}
	require.Equal(t, first, authflow.New(newConfig("https://test-api.service.hmrc.gov.uk/")).AuthorizationURL())

	u, err := url.Parse(first)
	require.NoError(t, err)
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "test-api.service.hmrc.gov.uk", u.Host)
	require.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "hello read:vat", q.Get("scope"))
	require.False(t, q.Has("state"))
}

func TestExchangeSuccess(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()
	provider.AddCode("abc123", fakeapi.Grant{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 3600})

	engine := authflow.New(newConfig(provider.BaseURL()))
	tok, err := engine.Exchange(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, "access-1", tok.AccessToken())
	require.Equal(t, "refresh-1", tok.RefreshToken())

	// A freshly issued token is never immediately expired.
	require.False(t, tok.IsExpired(time.Now()))

	reqs := provider.TokenRequests()
	require.Len(t, reqs, 1)
	require.Equal(t, "authorization_code", reqs[0].Get("grant_type"))
	require.Equal(t, "abc123", reqs[0].Get("code"))
	require.Equal(t, testRedirectURI, reqs[0].Get("redirect_uri"))
	require.Equal(t, testClientID, reqs[0].Get("client_id"))
	require.Equal(t, testClientSecret, reqs[0].Get("client_secret"))
}

func TestExchangeRejectedCode(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()

	engine := authflow.New(newConfig(provider.BaseURL()))
	_, err := engine.Exchange(context.Background(), "not-a-code")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrExchangeFailed))

	var exchangeErr *authflow.ExchangeFailedError
	require.True(t, errors.As(err, &exchangeErr))
	require.Equal(t, http.StatusBadRequest, exchangeErr.Provider.StatusCode)
	require.Equal(t, "invalid_grant", exchangeErr.Provider.Code)
	require.Contains(t, exchangeErr.Provider.Body, "invalid_grant")
	require.Contains(t, err.Error(), "invalid_grant")
}

func TestExchangeMissingCodeMakesNoCall(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()

	engine := authflow.New(newConfig(provider.BaseURL()))
	_, err := engine.Exchange(context.Background(), "")
	require.True(t, errors.Is(err, errors.ErrExchangeFailed))
	require.True(t, errors.Is(err, errors.ErrMissingCode))
	require.Empty(t, provider.TokenRequests())
}

func TestExchangeTransportFailure(t *testing.T) {
	provider := fakeapi.New()
	baseURL := provider.BaseURL()
	provider.Close()

	engine := authflow.New(newConfig(baseURL))
	_, err := engine.Exchange(context.Background(), "abc123")
	require.True(t, errors.Is(err, errors.ErrExchangeFailed))
}

func TestRefreshSuccess(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()
	provider.AddRefresh("refresh-1", fakeapi.Grant{AccessToken: "access-2", RefreshToken: "refresh-2", ExpiresIn: 3600})

	engine := authflow.New(newConfig(provider.BaseURL()))
	stale := token.New("access-1", "refresh-1", time.Now().Add(-time.Minute))

	fresh, err := engine.Refresh(context.Background(), stale)
	require.NoError(t, err)
	require.Equal(t, "access-2", fresh.AccessToken())
	require.Equal(t, "refresh-2", fresh.RefreshToken())
	require.False(t, fresh.Expired())

	// The stale value is untouched.
	require.Equal(t, "access-1", stale.AccessToken())
	require.Equal(t, 1, provider.RefreshCount())
}

func TestRefreshKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()
	provider.AddRefresh("refresh-1", fakeapi.Grant{AccessToken: "access-2", ExpiresIn: 3600})

	engine := authflow.New(newConfig(provider.BaseURL()))
	fresh, err := engine.Refresh(context.Background(), token.New("access-1", "refresh-1", time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	require.Equal(t, "refresh-1", fresh.RefreshToken())
}

func TestRefreshRejected(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()

	engine := authflow.New(newConfig(provider.BaseURL()))
	_, err := engine.Refresh(context.Background(), token.New("access-1", "revoked", time.Now().Add(-time.Minute)))
	require.True(t, errors.Is(err, errors.ErrRefreshFailed))

	var refreshErr *authflow.RefreshFailedError
	require.True(t, errors.As(err, &refreshErr))
	require.Equal(t, "invalid_grant", refreshErr.Provider.Code)
	require.False(t, refreshErr.Timeout())
	require.Equal(t, 1, provider.RefreshCount())
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()

	engine := authflow.New(newConfig(provider.BaseURL()))
	_, err := engine.Refresh(context.Background(), token.New("access-1", "", time.Now().Add(-time.Minute)))
	require.True(t, errors.Is(err, errors.ErrRefreshFailed))
	require.True(t, errors.Is(err, errors.ErrNoRefreshToken))
	require.Zero(t, provider.RefreshCount())
}

func TestRefreshTimeout(t *testing.T) {
	provider := fakeapi.New()
	defer provider.Close()
	provider.AddRefresh("refresh-1", fakeapi.Grant{AccessToken: "access-2", ExpiresIn: 3600})
	provider.SetTokenDelay(time.Second)

	engine := authflow.New(newConfig(provider.BaseURL()), authflow.WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := engine.Refresh(context.Background(), token.New("access-1", "refresh-1", time.Now().Add(-time.Minute)))
	require.True(t, errors.Is(err, errors.ErrRefreshFailed))
	require.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestDiscoverEndpoints(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
			"jwks_uri":               issuer + "/jwks",
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	endpoint, err := authflow.Discover(context.Background(), issuer, srv.Client())
	require.NoError(t, err)
	require.Equal(t, issuer+"/authorize", endpoint.AuthURL)
	require.Equal(t, issuer+"/token", endpoint.TokenURL)
	require.Equal(t, oauth2.AuthStyleInParams, endpoint.AuthStyle)

	engine := authflow.New(newConfig("https://unused.example.com/"), authflow.WithEndpoint(endpoint))
	u, err := url.Parse(engine.AuthorizationURL())
	require.NoError(t, err)
	require.Equal(t, issuer+"/authorize", u.Scheme+"://"+u.Host+u.Path)
}

func TestDiscoverUnknownIssuer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := authflow.Discover(context.Background(), srv.URL, srv.Client())
	require.Error(t, err)
}
