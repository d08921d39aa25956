package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetEnableRateLimiting() bool
	GetRateLimit() (rps float64, burst int)
	GetWellKnownDir() string
	GetTrustProxyHeaders() bool
}

type Security struct {
	sessionMaxAge  time.Duration
	rateLimitRPS   float64
	rateLimitBurst int
	wellKnownDir   string
	trustProxy     bool
}

var _ SecurityConfig = Security{}

func (s Security) GetMaxSessionAge() time.Duration {
	if s.sessionMaxAge <= 0 {
		return defaultSessionMaxAge
	}
	return s.sessionMaxAge
}

func (s Security) GetEnableRateLimiting() bool {
	return s.rateLimitRPS > 0
}

func (s Security) GetRateLimit() (float64, int) {
	burst := s.rateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return s.rateLimitRPS, burst
}

func (s Security) GetWellKnownDir() string {
	return s.wellKnownDir
}

// GetTrustProxyHeaders reports whether the client address may be taken from
// X-Forwarded-For or X-Real-IP.
func (s Security) GetTrustProxyHeaders() bool {
	return s.trustProxy
}
