package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/promptly-app/promptly/backend/internal/token"
	"github.com/promptly-app/promptly/backend/pkg/utils"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// OwnerIDFromContext returns the owner id resolved by Authenticator.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	return ownerID, ok
}

// Authenticator resolves the bearer credential to an owner id and stores it in
// the request context. Requests without a valid token get a 401.
func Authenticator(tokens *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header || raw == "" {
				utils.RespondError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			ownerID, err := tokens.Verify(raw)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerIDKey, ownerID)))
		})
	}
}
