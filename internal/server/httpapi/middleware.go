package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anveshm/vidtube/internal/server/auth"
)

type contextKey string

const userIDContextKey = contextKey("user_id")

// RequireAccessToken verifies the access token on every request before the
// wrapped handler runs. The token is read from the accessToken cookie or an
// Authorization bearer header. The authenticated user ID is injected into
// the request context.
func RequireAccessToken(secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
				return
			}

			claims, err := auth.ParseAccessToken(token, secret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// UserIDFromContext returns the authenticated user ID set by
// RequireAccessToken.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
