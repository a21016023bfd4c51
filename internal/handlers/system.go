package handlers

import (
	"net"
	"net/http"
	"strings"

	"guardian/internal/auth"
	"guardian/internal/envfile"
)

// Version is set at build time
var Version = "dev"

// homepageDNSName is the friendly name published by the stack's DNS filter.
const homepageDNSName = "homepage.guardian.home"

// Health returns server health status
func Health(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{
		"status":  "healthy",
		"service": "Guardian Hub Config UI",
		"version": Version,
	})
}

// HomepageLink returns the URL of the stack's dashboard, preferring the
// DNS name when it resolves (i.e. the client uses the Pi-hole resolver)
// and falling back to the configured appliance IP.
func HomepageLink(store *envfile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := net.LookupHost(homepageDNSName); err == nil {
			JSONResponse(w, map[string]interface{}{
				"status":  "success",
				"url":     "http://" + homepageDNSName,
				"usedDns": true,
			})
			return
		}

		ip, found, err := store.GetRaw(envfile.KeyGuardianIP)
		if err != nil {
			JSONAppError(w, err)
			return
		}
		if !found || ip == "" {
			ip = "127.0.0.1"
		}
		JSONResponse(w, map[string]interface{}{
			"status":  "success",
			"url":     "http://" + ip + ":3001",
			"usedDns": false,
		})
	}
}

// StaticFiles serves the web UI, redirecting unauthenticated page loads to
// the login page. Assets the login page itself needs stay public.
func StaticFiles(ctrl *auth.Controller, dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))

	publicExtensions := []string{".css", ".js", ".ico", ".png", ".svg"}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login.html" || hasPublicExtension(r.URL.Path, publicExtensions) {
			fs.ServeHTTP(w, r)
			return
		}

		if !ctrl.CheckAuth(r.Header.Get("Authorization")) && !hasSessionCookie(r, ctrl) {
			http.Redirect(w, r, "/login.html", http.StatusFound)
			return
		}

		fs.ServeHTTP(w, r)
	}
}

func hasPublicExtension(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// hasSessionCookie lets browser page loads through when the UI has stored
// its token in a cookie; API calls use the Authorization header.
func hasSessionCookie(r *http.Request, ctrl *auth.Controller) bool {
	cookie, err := r.Cookie("session")
	if err != nil {
		return false
	}
	return ctrl.CheckAuth("Bearer " + cookie.Value)
}
