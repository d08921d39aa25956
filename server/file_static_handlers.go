package server

import (
	"net/http"
	"os"
)

// wellKnownHandler serves files such as domain validation challenges from dir.
func (s *Server) wellKnownHandler(dir string) http.HandlerFunc {
	files := http.StripPrefix(RouteWellKnown, http.FileServerFS(os.DirFS(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	}
}
