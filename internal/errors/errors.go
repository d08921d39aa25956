package errors

import (
	"errors"
	"fmt"
)

// Common error types for the API client
var (
	// OAuth2 flow errors
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrNoRefreshToken = errors.New("token has no refresh token")
	ErrMissingCode    = errors.New("missing authorization code")

	// Downstream API errors
	ErrDownstreamCallFailed = errors.New("downstream call failed")
	ErrResponseTooLarge     = errors.New("response body too large")

	// Session errors
	ErrSessionIDRequired = errors.New("session id is required")
	ErrTokenCleared      = errors.New("session token cleared during refresh")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
