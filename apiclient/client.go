package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds every downstream call.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a downstream body is read.
	maxBodyBytes = 4 << 20
)

// Request describes a downstream GET.
type Request struct {
	URL         string
	Query       url.Values
	Accept      string
	ContentType string
	BearerToken string
}

// Response is a successful downstream response, passed to the caller verbatim.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response's Content-Type header.
func (r Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Client performs the outbound calls to the resource API.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a downstream API client.
func New(opts ...ClientOption) *Client {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Get issues the request. A transport failure or a non-2xx status is a
// *CallFailedError carrying whatever the API returned.
func (c *Client) Get(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := buildURL(req.URL, req.Query)
	if err != nil {
		return Response{}, &CallFailedError{URL: req.URL, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, &CallFailedError{URL: target, Err: err}
	}
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)
	}

	log.Info().Str("url", target).Str("accept", req.Accept).Bool("bearer", req.BearerToken != "").Msg("Calling API")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Err(err).Str("url", target).Msg("API call failed")
		return Response{}, &CallFailedError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return Response{}, &CallFailedError{URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	if len(body) > maxBodyBytes {
		log.Error().Str("url", target).Int("limit", maxBodyBytes).Msg("API response too large")
		return Response{}, &CallFailedError{URL: target, StatusCode: resp.StatusCode, Err: errors.ErrResponseTooLarge}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Str("url", target).Int("status", resp.StatusCode).Msg("Handling error response")
		return Response{}, &CallFailedError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
	}

	return Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func buildURL(raw string, query url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid url %q", raw)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
