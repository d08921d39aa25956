package config

import "strings"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetServerToken() string
	GetRedirectURI() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetOIDCIssuer() string
	GetScopes() []string
	GetRefreshFailurePolicy() RefreshFailurePolicy
}

// RefreshFailurePolicy decides what happens to a session's token when a refresh is rejected.
type RefreshFailurePolicy string

const (
	// RefreshPolicyRetain keeps the stale token, so the next request retries the refresh.
	RefreshPolicyRetain RefreshFailurePolicy = "retain"
	// RefreshPolicyReauthorize drops the token, so the next request starts a new authorization.
	RefreshPolicyReauthorize RefreshFailurePolicy = "reauthorize"
)

func ParseRefreshFailurePolicy(s string) RefreshFailurePolicy {
	if RefreshFailurePolicy(strings.ToLower(strings.TrimSpace(s))) == RefreshPolicyReauthorize {
		return RefreshPolicyReauthorize
	}
	return RefreshPolicyRetain
}

const (
	authorizePath = "oauth/authorize"
	tokenPath     = "oauth/token"
)

type OAuth struct {
	clientID      string
	clientSecret  string
	serverToken   string
	redirectURI   string
	baseURL       string
	oidcIssuer    string
	scopes        []string
	refreshPolicy RefreshFailurePolicy
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.clientID
}

func (o OAuth) GetClientSecret() string {
	return o.clientSecret
}

// GetServerToken is the static credential used for application-restricted calls.
func (o OAuth) GetServerToken() string {
	return o.serverToken
}

func (o OAuth) GetRedirectURI() string {
	return o.redirectURI
}

func (o OAuth) GetAuthorizeURL() string {
	return joinURL(o.baseURL, authorizePath)
}

func (o OAuth) GetTokenURL() string {
	return joinURL(o.baseURL, tokenPath)
}

// GetOIDCIssuer returns the issuer used for endpoint discovery; empty means use the static endpoints.
func (o OAuth) GetOIDCIssuer() string {
	return o.oidcIssuer
}

func (o OAuth) GetScopes() []string {
	return append([]string(nil), o.scopes...)
}

func (o OAuth) GetRefreshFailurePolicy() RefreshFailurePolicy {
	if o.refreshPolicy == "" {
		return RefreshPolicyRetain
	}
	return o.refreshPolicy
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
