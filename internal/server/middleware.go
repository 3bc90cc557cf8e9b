package server

import (
	"crypto/subtle"
	"net/http"
)

// basicAuth gates the API behind static basic-auth credentials.
// Missing server-side credentials are a configuration error and fail
// closed with 500; a wrong client credential gets the standard 401
// challenge. Comparisons are constant-time.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth.Username == "" || s.auth.Password == "" {
			s.log.Error("Basic auth credentials are not configured")
			s.respondError(w, http.StatusInternalServerError,
				"Internal server error", "Basic auth credentials are not configured.")
			return
		}

		username, password, ok := r.BasicAuth()
		usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.auth.Username)) == 1
		passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.auth.Password)) == 1
		if !ok || !usernameMatch || !passwordMatch {
			w.Header().Set("WWW-Authenticate", `Basic realm="shoplens"`)
			s.respondError(w, http.StatusUnauthorized, "Unauthorized", "Incorrect username or password")
			return
		}

		next.ServeHTTP(w, r)
	})
}
