package auth

import (
	"log"
	"net/http"
)

// RequireSession rejects requests that do not carry a valid bearer token.
func (c *Controller) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.CheckAuth(r.Header.Get("Authorization")) {
			log.Printf("auth: rejected %s %s", r.Method, r.URL.Path)
			jsonError(w, "Invalid or expired authentication token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
