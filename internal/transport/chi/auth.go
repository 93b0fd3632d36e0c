package chi

import (
	"context"
	"net/http"
	"strings"
)

type accountKey struct{}

// AccountFromContext returns the authenticated account name, if any.
func AccountFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(accountKey{}).(string); ok {
		return v
	}
	return ""
}

// gatedPaths are routes that require a valid token. Everything else is open:
// the directory is a public read surface and only the personalized
// recommendation endpoint needs an identity.
var gatedPaths = map[string]struct{}{
	"/search/recommend": {},
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens on
// gated routes and stores the resolved account name in the request context.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys map[string]string) func(http.Handler) http.Handler {
	validKeys := make(map[string]string, len(apiKeys))
	for token, account := range apiKeys {
		if token != "" {
			validKeys[token] = account
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, gated := gatedPaths[r.URL.Path]; !gated {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, CodeBadRequest, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					CodeBadRequest, "authorization header must use Bearer scheme")
				return
			}

			token := auth[len(bearerPrefix):]
			account, ok := validKeys[token]
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeBadRequest, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey{}, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
