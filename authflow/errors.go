package authflow

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-api-client/internal/errors"
	"golang.org/x/oauth2"
)

// ProviderError is the token endpoint's rejection, as reported on the wire.
type ProviderError struct {
	StatusCode  int    `json:"status,omitempty"`
	Code        string `json:"error,omitempty"`
	Description string `json:"error_description,omitempty"`
	Body        string `json:"body,omitempty"`
}

// ExchangeFailedError reports a rejected authorization code or a transport
// failure during the code exchange.
type ExchangeFailedError struct {
	Provider ProviderError
	Err      error
}

func (e *ExchangeFailedError) Error() string {
	return describe(errors.ErrExchangeFailed, e.Provider, e.Err)
}

func (e *ExchangeFailedError) Unwrap() []error {
	return []error{errors.ErrExchangeFailed, e.Err}
}

// RefreshFailedError reports a rejected refresh token or a transport
// failure during refresh.
type RefreshFailedError struct {
	Provider ProviderError
	Err      error
}

func (e *RefreshFailedError) Error() string {
	return describe(errors.ErrRefreshFailed, e.Provider, e.Err)
}

func (e *RefreshFailedError) Unwrap() []error {
	return []error{errors.ErrRefreshFailed, e.Err}
}

// Timeout reports whether the call was abandoned because its deadline passed.
func (e *RefreshFailedError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Timeout reports whether the call was abandoned because its deadline passed.
func (e *ExchangeFailedError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func newExchangeFailed(err error) *ExchangeFailedError {
	return &ExchangeFailedError{Provider: providerError(err), Err: err}
}

func newRefreshFailed(err error) *RefreshFailedError {
	return &RefreshFailedError{Provider: providerError(err), Err: err}
}

func providerError(err error) ProviderError {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return ProviderError{}
	}
	pe := ProviderError{
		Code:        re.ErrorCode,
		Description: re.ErrorDescription,
		Body:        string(re.Body),
	}
	if re.Response != nil {
		pe.StatusCode = re.Response.StatusCode
	}
	return pe
}

func describe(kind error, pe ProviderError, err error) string {
	switch {
	case pe.Code != "" && pe.Description != "":
		return fmt.Sprintf("%s: %s: %s", kind, pe.Code, pe.Description)
	case pe.Code != "":
		return fmt.Sprintf("%s: %s", kind, pe.Code)
	case pe.StatusCode != 0:
		return fmt.Sprintf("%s: %d %s", kind, pe.StatusCode, http.StatusText(pe.StatusCode))
	case err != nil:
		return fmt.Sprintf("%s: %v", kind, err)
	}
	return kind.Error()
}
