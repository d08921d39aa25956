package config

import (
	"strings"
	"time"
)

type Config interface {
	EnvConfig
	OAuthConfig
	APIConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetServiceName() string
	GetServiceVersion() string
	GetAcceptHeader() string
	GetVRN() string
	GetHTTPTimeout() time.Duration
}

// Settings holds the raw option values. It is filled from the environment
// and command line flags, then frozen by New.
type Settings struct {
	Port                 string
	AppName              string
	Env                  string
	LogLevel             string
	ClientID             string
	ClientSecret         string
	ServerToken          string
	RedirectURI          string
	APIBaseURL           string
	OIDCIssuer           string
	Scope                string
	ServiceName          string
	ServiceVersion       string
	VRN                  string
	HTTPTimeout          time.Duration
	SessionMaxAge        time.Duration
	RefreshFailurePolicy string
	RateLimitRPS         float64
	RateLimitBurst       int
	WellKnownDir         string
	TrustProxyHeaders    bool
}

type mainConfig struct {
	EnvVars
	OAuth
	API
	Security
}

// New freezes the settings into an immutable Config value.
func New(s Settings) Config {
	return mainConfig{
		EnvVars: EnvVars{
			port:     s.Port,
			appName:  s.AppName,
			env:      s.Env,
			logLevel: s.LogLevel,
		},
		OAuth: OAuth{
			clientID:      s.ClientID,
			clientSecret:  s.ClientSecret,
			serverToken:   s.ServerToken,
			redirectURI:   s.RedirectURI,
			baseURL:       s.APIBaseURL,
			oidcIssuer:    s.OIDCIssuer,
			scopes:        strings.Fields(s.Scope),
			refreshPolicy: ParseRefreshFailurePolicy(s.RefreshFailurePolicy),
		},
		API: API{
			baseURL:        s.APIBaseURL,
			serviceName:    s.ServiceName,
			serviceVersion: s.ServiceVersion,
			vrn:            s.VRN,
			httpTimeout:    s.HTTPTimeout,
		},
		Security: Security{
			sessionMaxAge:  s.SessionMaxAge,
			rateLimitRPS:   s.RateLimitRPS,
			rateLimitBurst: s.RateLimitBurst,
			wellKnownDir:   s.WellKnownDir,
			trustProxy:     s.TrustProxyHeaders,
		},
	}
}

// Missing lists the options that are required for the user and application
// restricted calls but were not supplied. Absent values are not fatal: the
// calls that need them fail when they are made.
func Missing(c Config) []string {
	var missing []string
	if c.GetClientID() == "" {
		missing = append(missing, clientIDEnvVar)
	}
	if c.GetClientSecret() == "" {
		missing = append(missing, clientSecretEnvVar)
	}
	if c.GetRedirectURI() == "" {
		missing = append(missing, redirectURIEnvVar)
	}
	if c.GetServerToken() == "" {
		missing = append(missing, serverTokenEnvVar)
	}
	return missing
}
