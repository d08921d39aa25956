// Package fakeapi is an in-process stand-in for the OAuth2 provider and
// the resource API, used by tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	AuthorizePath = "/oauth/authorize"
	TokenPath     = "/oauth/token"
)

// Grant is the token set issued for a code or refresh token.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// APICall records one request made to a resource endpoint.
type APICall struct {
	Path          string
	Query         url.Values
	Authorization string
	Accept        string
}

type response struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu            sync.Mutex
	codes         map[string]Grant
	refreshes     map[string]Grant
	responses     map[string]response
	tokenRequests []url.Values
	apiCalls      []APICall
	tokenDelay    time.Duration
}

// New starts a fake provider. Close it when done.
func New() *Server {
	s := &Server{
		codes:     make(map[string]Grant),
		refreshes: make(map[string]Grant),
		responses: make(map[string]response),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+TokenPath, s.tokenHandler)
	mux.HandleFunc("/", s.apiHandler)
	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL returns the server URL with a trailing slash, the form the
// client configuration uses.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// AddCode makes code exchangeable for g.
func (s *Server) AddCode(code string, g Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = g
}

// AddRefresh makes refreshToken exchangeable for g.
func (s *Server) AddRefresh(refreshToken string, g Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes[refreshToken] = g
}

// SetTokenDelay delays every token endpoint response.
func (s *Server) SetTokenDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenDelay = d
}

// SetResponse fixes the status and body returned for an API path.
func (s *Server) SetResponse(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = response{status: status, body: body}
}

// TokenRequests returns the form of every token endpoint request.
func (s *Server) TokenRequests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.tokenRequests...)
}

// RefreshCount returns how many refresh_token grants were requested.
func (s *Server) RefreshCount() int {
	n := 0
	for _, form := range s.TokenRequests() {
		if form.Get("grant_type") == "refresh_token" {
			n++
		}
	}
	return n
}

// APICalls returns every resource request received.
func (s *Server) APICalls() []APICall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]APICall(nil), s.apiCalls...)
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	s.mu.Lock()
	s.tokenRequests = append(s.tokenRequests, r.PostForm)
	delay := s.tokenDelay
	var (
		grant Grant
		ok    bool
	)
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		grant, ok = s.codes[r.PostForm.Get("code")]
	case "refresh_token":
		grant, ok = s.refreshes[r.PostForm.Get("refresh_token")]
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}

	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "grant is invalid, expired or revoked",
		})
		return
	}

	body := map[string]any{
		"access_token": grant.AccessToken,
		"token_type":   "bearer",
		"scope":        "hello read:vat",
	}
	if grant.RefreshToken != "" {
		body["refresh_token"] = grant.RefreshToken
	}
	if grant.ExpiresIn > 0 {
		body["expires_in"] = grant.ExpiresIn
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) apiHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.apiCalls = append(s.apiCalls, APICall{
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		Accept:        r.Header.Get("Accept"),
	})
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
		return
	}

	if strings.HasSuffix(r.URL.Path, "/user") || strings.Contains(r.URL.Path, "/obligations") {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"code":    "MISSING_CREDENTIALS",
				"message": "Authentication information is not provided",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello " + r.URL.Path})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
