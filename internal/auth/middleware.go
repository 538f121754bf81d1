package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Identity is what the access gate attaches to every authenticated request.
// Handlers trust it without re-verification.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

type contextKey struct{}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	return identity, ok
}

func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// Authenticate validates the Bearer token and stores the caller's Identity
// in the request context.
func (t *TokenIssuer) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeMessage(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}

		claims, err := t.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}

		identity := Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireRoles rejects authenticated callers whose role is not in the list.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeMessage(w, http.StatusForbidden, "Access denied")
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
