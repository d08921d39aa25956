package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-api-client/apiclient"
	"github.com/jrsteele09/go-api-client/authflow"
	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// errorBody is the JSON rendering of a failed call. Body carries the
// upstream payload verbatim.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Body    any    `json:"body,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAPIResponse passes a downstream response through unchanged.
func writeAPIResponse(w http.ResponseWriter, resp apiclient.Response) {
	contentType := resp.ContentType()
	if contentType == "" {
		contentType = contentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// writeCallError reports an exchange, refresh or downstream failure to the caller.
func writeCallError(w http.ResponseWriter, err error) {
	var (
		callErr    *apiclient.CallFailedError
		refreshErr *authflow.RefreshFailedError
		exchErr    *authflow.ExchangeFailedError
	)

	body := errorBody{Message: err.Error()}
	status := http.StatusBadGateway

	switch {
	case errors.As(err, &callErr):
		body.Error = errors.ErrDownstreamCallFailed.Error()
		body.Status = callErr.StatusCode
		body.Body = verbatim(callErr.Body)
		if callErr.StatusCode >= http.StatusBadRequest {
			status = callErr.StatusCode
		}
	case errors.As(err, &refreshErr):
		body.Error = errors.ErrRefreshFailed.Error()
		body.Status = refreshErr.Provider.StatusCode
		body.Body = verbatim([]byte(refreshErr.Provider.Body))
	case errors.As(err, &exchErr):
		body.Error = errors.ErrExchangeFailed.Error()
		body.Status = exchErr.Provider.StatusCode
		body.Body = verbatim([]byte(exchErr.Provider.Body))
	default:
		body.Error = "internal error"
		status = http.StatusInternalServerError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	log.Err(err).Int("status", status).Msg("Handling error response")
	writeJSON(w, status, body)
}

// verbatim keeps a JSON payload as-is and wraps anything else as a string.
func verbatim(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return string(b)
}
