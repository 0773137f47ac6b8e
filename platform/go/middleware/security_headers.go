package middleware

import (
	"net/http"
	"strings"
)

// DefaultScriptSources are the origins allowed to serve scripts to catalog pages.
var DefaultScriptSources = []string{"'self'", "code.jquery.com", "cdn.jsdelivr.net"}

// SecurityHeaders sets the content security policy and the usual hardening headers.
func SecurityHeaders(scriptSources ...string) func(http.Handler) http.Handler {
	if len(scriptSources) == 0 {
		scriptSources = DefaultScriptSources
	}
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src " + strings.Join(scriptSources, " "),
		"style-src 'self' https: 'unsafe-inline'",
		"img-src 'self' data:",
		"font-src 'self' https: data:",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'self'",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}
