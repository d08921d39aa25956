package config

import (
	"fmt"
	"time"
)

type API struct {
	baseURL        string
	serviceName    string
	serviceVersion string
	vrn            string
	httpTimeout    time.Duration
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.baseURL
}

func (a API) GetServiceName() string {
	return a.serviceName
}

func (a API) GetServiceVersion() string {
	return a.serviceVersion
}

// GetAcceptHeader returns the versioned media type the API expects, e.g. application/vnd.hmrc.1.0+json
func (a API) GetAcceptHeader() string {
	return fmt.Sprintf("application/vnd.hmrc.%s+json", a.serviceVersion)
}

// GetVRN returns the VAT registration number used for the obligations call.
func (a API) GetVRN() string {
	return a.vrn
}

func (a API) GetHTTPTimeout() time.Duration {
	if a.httpTimeout <= 0 {
		return defaultHTTPTimeout
	}
	return a.httpTimeout
}
