// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS wraps h.  If the request arrived over plain HTTP and the host
// is not “localhost”, the wrapper issues a 308 Permanent Redirect to the
// HTTPS version of the same URL.  enabled is consulted per request, so a
// config reload can flip the policy without a restart; when it reports
// false the wrapper is a pass-through and dev deployments keep plain HTTP.
func ForceHTTPS(enabled func() bool, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Disabled, already HTTPS, or dev host → continue.
		if !enabled() || r.TLS != nil || stripPort(r.Host) == "localhost" {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
