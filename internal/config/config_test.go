package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-api-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, name := range []string{"PORT", "ENV", "API_BASE_URL", "OAUTH_SCOPE", "VRN", "HTTP_TIMEOUT", "SESSION_MAX_AGE", "REFRESH_FAILURE_POLICY", "RATE_LIMIT_RPS"} {
		t.Setenv(name, "")
	}

	c := config.New(config.FromEnv())
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "https://test-api.service.hmrc.gov.uk/", c.GetAPIBaseURL())
	require.Equal(t, "https://test-api.service.hmrc.gov.uk/oauth/authorize", c.GetAuthorizeURL())
	require.Equal(t, "https://test-api.service.hmrc.gov.uk/oauth/token", c.GetTokenURL())
	require.Equal(t, []string{"hello", "read:vat"}, c.GetScopes())
	require.Equal(t, "666334575", c.GetVRN())
	require.Equal(t, "application/vnd.hmrc.1.0+json", c.GetAcceptHeader())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, 10*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, config.RefreshPolicyRetain, c.GetRefreshFailurePolicy())
	require.False(t, c.GetEnableRateLimiting())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("CLIENT_ID", "client-1")
	t.Setenv("OAUTH_SCOPE", "read:vat  write:vat")
	t.Setenv("SERVICE_VERSION", "2.0")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("SESSION_MAX_AGE", "not-a-duration")
	t.Setenv("REFRESH_FAILURE_POLICY", "Reauthorize")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "0")

	c := config.New(config.FromEnv())
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "client-1", c.GetClientID())
	require.Equal(t, []string{"read:vat", "write:vat"}, c.GetScopes())
	require.Equal(t, "application/vnd.hmrc.2.0+json", c.GetAcceptHeader())
	require.Equal(t, 5*time.Second, c.GetHTTPTimeout())
	require.Equal(t, 10*time.Hour, c.GetMaxSessionAge(), "invalid durations fall back to the default")
	require.Equal(t, config.RefreshPolicyReauthorize, c.GetRefreshFailurePolicy())

	require.True(t, c.GetEnableRateLimiting())
	rps, burst := c.GetRateLimit()
	require.Equal(t, 2.5, rps)
	require.Equal(t, 1, burst)
}

func TestParseRefreshFailurePolicy(t *testing.T) {
	require.Equal(t, config.RefreshPolicyReauthorize, config.ParseRefreshFailurePolicy(" REAUTHORIZE "))
	require.Equal(t, config.RefreshPolicyRetain, config.ParseRefreshFailurePolicy("retain"))
	require.Equal(t, config.RefreshPolicyRetain, config.ParseRefreshFailurePolicy(""))
	require.Equal(t, config.RefreshPolicyRetain, config.ParseRefreshFailurePolicy("something-else"))
}

func TestEndpointsJoinBaseURL(t *testing.T) {
	for _, base := range []string{"http://localhost:9000", "http://localhost:9000/", "http://localhost:9000//"} {
		c := config.New(config.Settings{APIBaseURL: base})
		require.Equal(t, "http://localhost:9000/oauth/authorize", c.GetAuthorizeURL())
		require.Equal(t, "http://localhost:9000/oauth/token", c.GetTokenURL())
	}
}

func TestScopesAreCopied(t *testing.T) {
	c := config.New(config.Settings{Scope: "hello read:vat"})
	scopes := c.GetScopes()
	scopes[0] = "changed"
	require.Equal(t, "hello", c.GetScopes()[0])
}

func TestMissing(t *testing.T) {
	require.Equal(t,
		[]string{"CLIENT_ID", "CLIENT_SECRET", "REDIRECT_URI", "SERVER_TOKEN"},
		config.Missing(config.New(config.Settings{})))

	require.Empty(t, config.Missing(config.New(config.Settings{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:8080/oauth20/callback",
		ServerToken:  "server",
	})))
}
