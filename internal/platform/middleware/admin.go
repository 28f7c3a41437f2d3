package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// RequireAdminToken guards provider administration routes. The configured
// value is a bcrypt hash so the cleartext token never sits in the
// environment of a running process.
func RequireAdminToken(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			presented := r.Header.Get("X-Admin-Token")
			if presented == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(presented)); err != nil {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
