package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token is an OAuth2 token set. It is immutable: a refresh produces a new
// Token value, it never updates an existing one.
type Token struct {
	accessToken  string
	refreshToken string
	tokenType    string
	expiresAt    time.Time
}

// New creates a Token. A zero expiresAt means the provider reported no expiry.
func New(accessToken, refreshToken string, expiresAt time.Time) Token {
	return Token{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		tokenType:    "Bearer",
		expiresAt:    expiresAt,
	}
}

// FromOAuth2 converts a token returned by golang.org/x/oauth2. When the
// provider omitted expires_in but the access token is a JWT, the expiry is
// taken from its exp claim.
func FromOAuth2(t *oauth2.Token) Token {
	if t == nil {
		return Token{}
	}
	expiresAt := t.Expiry
	if expiresAt.IsZero() {
		expiresAt = jwtExpiry(t.AccessToken)
	}
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return Token{
		accessToken:  t.AccessToken,
		refreshToken: t.RefreshToken,
		tokenType:    tokenType,
		expiresAt:    expiresAt,
	}
}

// ToOAuth2 converts the token back for use with golang.org/x/oauth2.
func (t Token) ToOAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.accessToken,
		RefreshToken: t.refreshToken,
		TokenType:    t.tokenType,
		Expiry:       t.expiresAt,
	}
}

func (t Token) AccessToken() string {
	return t.accessToken
}

func (t Token) RefreshToken() string {
	return t.refreshToken
}

func (t Token) TokenType() string {
	return t.tokenType
}

func (t Token) ExpiresAt() time.Time {
	return t.expiresAt
}

// HasExpiry reports whether the provider gave the token a lifetime.
func (t Token) HasExpiry() bool {
	return !t.expiresAt.IsZero()
}

// IsZero reports whether t carries no access token at all.
func (t Token) IsZero() bool {
	return t.accessToken == ""
}

// CanRefresh reports whether a refresh token is available.
func (t Token) CanRefresh() bool {
	return t.refreshToken != ""
}

// IsExpired reports whether now is at or past the expiry. Tokens without an
// expiry never expire.
func (t Token) IsExpired(now time.Time) bool {
	if !t.HasExpiry() {
		return false
	}
	return !now.Before(t.expiresAt)
}

// Expired evaluates IsExpired against NowTimeFunc.
func (t Token) Expired() bool {
	return t.IsExpired(NowTimeFunc())
}

// String renders a redacted summary suitable for logs.
func (t Token) String() string {
	refresh := "none"
	if t.CanRefresh() {
		refresh = "set"
	}
	expiry := "never"
	if t.HasExpiry() {
		expiry = t.expiresAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("[A:%s R:%s X:%s]", redact(t.accessToken), refresh, expiry)
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "…"
}

func jwtExpiry(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
