// internal/app/system/auth/apikey.go
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/app/system/network"
	"go.uber.org/zap"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// APIKeyAuth guards the mutating API. Requests must carry
// "Authorization: Bearer <api-key>".
//
// An empty validKey leaves the API open: the service is meant to run behind
// an authenticating proxy in that case, and startup logs a warning.
func APIKeyAuth(validKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	if validKey == "" {
		logger.Warn("API key not configured; mutating endpoints are unauthenticated")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				logger.Debug("API request rejected: missing or malformed Authorization header",
					zap.String("path", r.URL.Path))
				jsonutil.Unauthorized(w, "Missing or invalid Authorization header (expected: Bearer <api-key>)")
				return
			}
			if !tokenMatches(token, validKey) {
				logger.Warn("API request rejected: invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", network.ClientIP(r)))
				jsonutil.Unauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CronSecret guards scheduler callbacks. When secret is set the request must
// carry exactly "Bearer <secret>"; when it is empty every request passes.
func CronSecret(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				token, ok := bearerToken(r)
				if !ok || !tokenMatches(token, secret) {
					logger.Warn("cron request rejected",
						zap.String("path", r.URL.Path),
						zap.String("client_ip", network.ClientIP(r)))
					jsonutil.Unauthorized(w, "Unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
