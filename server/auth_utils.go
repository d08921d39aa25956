package server

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionCookieName is the name of the cookie carrying the caller's session id
const sessionCookieName = "session"

// sessionID returns the caller's session id, issuing a new one (and its
// cookie) when the request carries none or an invalid one.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.New().String()
	s.SetSessionCookie(w, id, r)
	return id
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}
