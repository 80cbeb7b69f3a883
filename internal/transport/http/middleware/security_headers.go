package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders sets the response hardening headers. frameAncestors lists
// the origins allowed to embed inline payslip previews.
func SecureHeaders(isProd bool, frameAncestors []string) func(http.Handler) http.Handler {
	ancestors := "'self'"
	if len(frameAncestors) > 0 {
		ancestors += " " + strings.Join(frameAncestors, " ")
	}
	csp := "default-src 'self'; base-uri 'self'; form-action 'self'; frame-ancestors " + ancestors + "; object-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self'"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("X-Frame-Options", "SAMEORIGIN")
			headers.Set("Referrer-Policy", "no-referrer")
			headers.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			headers.Set("Content-Security-Policy", csp)
			headers.Set("Cross-Origin-Opener-Policy", "same-origin")
			headers.Set("Cross-Origin-Resource-Policy", "same-site")
			if isProd {
				headers.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
			}
			next.ServeHTTP(w, r)
		})
	}
}
