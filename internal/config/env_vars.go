package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	portEnvVar           = "PORT"
	appNameVar           = "APP_NAME"
	envVar               = "ENV"
	logLevelVar          = "LOG_LEVEL"
	clientIDEnvVar       = "CLIENT_ID"
	clientSecretEnvVar   = "CLIENT_SECRET"
	serverTokenEnvVar    = "SERVER_TOKEN"
	redirectURIEnvVar    = "REDIRECT_URI"
	apiBaseURLVar        = "API_BASE_URL"
	oidcIssuerVar        = "OIDC_ISSUER"
	scopeVar             = "OAUTH_SCOPE"
	serviceNameVar       = "SERVICE_NAME"
	serviceVersionVar    = "SERVICE_VERSION"
	vrnVar               = "VRN"
	httpTimeoutVar       = "HTTP_TIMEOUT"
	sessionMaxAgeVar     = "SESSION_MAX_AGE"
	refreshPolicyVar     = "REFRESH_FAILURE_POLICY"
	rateLimitRPSVar      = "RATE_LIMIT_RPS"
	rateLimitBurstVar    = "RATE_LIMIT_BURST"
	wellKnownDirVar      = "WELL_KNOWN_DIR"
	trustProxyVar        = "TRUST_PROXY_HEADERS"
	defaultAPIBaseURL    = "https://test-api.service.hmrc.gov.uk/"
	defaultScope         = "hello read:vat"
	defaultVRN           = "666334575"
	defaultHTTPTimeout   = 30 * time.Second
	defaultSessionMaxAge = 10 * time.Hour
)

// FromEnv reads every recognised option from the environment, falling back
// to the defaults for anything unset.
func FromEnv() Settings {
	return Settings{
		Port:                 GetEnv(portEnvVar, "8080"),
		AppName:              GetEnv(appNameVar, "API Example Client"),
		Env:                  GetEnv(envVar, "DEV"),
		LogLevel:             GetEnv(logLevelVar, "info"),
		ClientID:             GetEnv(clientIDEnvVar, ""),
		ClientSecret:         GetEnv(clientSecretEnvVar, ""),
		ServerToken:          GetEnv(serverTokenEnvVar, ""),
		RedirectURI:          GetEnv(redirectURIEnvVar, ""),
		APIBaseURL:           GetEnv(apiBaseURLVar, defaultAPIBaseURL),
		OIDCIssuer:           GetEnv(oidcIssuerVar, ""),
		Scope:                GetEnv(scopeVar, defaultScope),
		ServiceName:          GetEnv(serviceNameVar, "hello"),
		ServiceVersion:       GetEnv(serviceVersionVar, "1.0"),
		VRN:                  GetEnv(vrnVar, defaultVRN),
		HTTPTimeout:          GetDurationEnv(httpTimeoutVar, defaultHTTPTimeout),
		SessionMaxAge:        GetDurationEnv(sessionMaxAgeVar, defaultSessionMaxAge),
		RefreshFailurePolicy: GetEnv(refreshPolicyVar, string(RefreshPolicyRetain)),
		RateLimitRPS:         GetFloatEnv(rateLimitRPSVar, 0),
		RateLimitBurst:       GetIntEnv(rateLimitBurstVar, 10),
		WellKnownDir:         GetEnv(wellKnownDirVar, ".well-known"),
		TrustProxyHeaders:    GetBoolEnv(trustProxyVar, false),
	}
}

type EnvVars struct {
	port     string
	appName  string
	env      string
	logLevel string
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.port
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetEnv() string {
	if e.env == "" {
		return "DEV"
	}
	return e.env
}

func (e EnvVars) GetLogLevel() string {
	return e.logLevel
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv parses a Go duration ("45s", "10h"). Invalid values fall back to the default.
func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func GetIntEnv(envVar string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetBoolEnv(envVar string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetFloatEnv(envVar string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(envVar), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
