package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-api-client/internal/errors"
)

// CallFailedError reports a non-success status or a transport failure on a
// downstream call. Body holds the API's response verbatim.
type CallFailedError struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

func (e *CallFailedError) Error() string {
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("%s: %s returned %d %s", errors.ErrDownstreamCallFailed, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %s: %v", errors.ErrDownstreamCallFailed, e.URL, e.Err)
}

func (e *CallFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{errors.ErrDownstreamCallFailed}
	}
	return []error{errors.ErrDownstreamCallFailed, e.Err}
}

// Timeout reports whether the call was abandoned because its deadline passed.
func (e *CallFailedError) Timeout() bool {
	return e.Err != nil && errors.Is(e.Err, context.DeadlineExceeded)
}
