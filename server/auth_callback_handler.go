package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// authenticationFailed is the body returned when the callback cannot obtain a token.
const authenticationFailed = "Authentication failed"

// OAuthCallbackHandler exchanges the authorization code, stores the token
// on the session and returns the caller to the page that needed it.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.sessionID(w, r)
		code := r.FormValue("code")

		// Check for authorization errors
		if errorParam := r.FormValue("error"); errorParam != "" {
			log.Error().
				Str("error", errorParam).
				Str("error_description", r.FormValue("error_description")).
				Msg("Authorization failed")
			s.invoker.AbandonAuthorization(sessionID)
			writeJSON(w, http.StatusUnauthorized, authenticationFailed)
			return
		}

		returnPath, err := s.invoker.Callback(r.Context(), sessionID, code)
		if err != nil {
			log.Err(err).Msg("Access Token Error")
			writeJSON(w, http.StatusUnauthorized, authenticationFailed)
			return
		}

		http.Redirect(w, r, returnPath, http.StatusSeeOther)
	}
}

// SignOutHandler drops the session's token and returns to the index.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.invoker.SignOut(s.sessionID(w, r)); err != nil {
			log.Err(err).Msg("Sign out failed")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
