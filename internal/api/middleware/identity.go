package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
)

// UserIDHeader is the header carrying the caller's user ID. Authentication
// happens upstream (API gateway); this service only needs the resolved
// identity.
const UserIDHeader = "X-User-ID"

// IdentityMiddleware extracts the user ID header into the request context.
// Requests without a valid UUID in the header are rejected with 401 before
// reaching any handler.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing user identity")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
