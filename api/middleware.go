package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// excludedPaths bypass authentication: probes and scrapers carry no token.
var excludedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// requireBearer rejects requests lacking a valid bearer token. The compare is
// constant-time so response timing leaks nothing about the key.
func (s *Server) requireBearer(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if excludedPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			s.unauthorized(w, r, "missing Authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			s.unauthorized(w, r, "invalid Authorization header")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			s.unauthorized(w, r, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	s.logger.Warn("unauthorized request",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("path", r.URL.Path))
	s.writeError(w, http.StatusUnauthorized, reason)
}
