package appMiddleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api"
)

// RequireSession extracts the bearer session token, validates it and puts
// the session id in the request context.
func RequireSession(tokens *SessionTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			sessionID, err := tokens.Parse(headerParts[1])
			if err != nil {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired session token")
				return
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return id, ok
}
