package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-vault/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// RequireAuth is middleware that requires a valid Bearer session token.
// A missing header, a malformed scheme, a bad signature and an expired token
// all produce the same response.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromRequest(tokens, r)
			if claims == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message": "Authentication failed!"}`))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFromRequest extracts and verifies the Bearer token, returning nil on
// any failure.
func claimsFromRequest(tokens *auth.TokenManager, r *http.Request) *auth.Claims {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}

	claims, err := tokens.Verify(parts[1])
	if err != nil {
		return nil
	}
	return claims
}

// GetClaimsFromContext retrieves the session claims from the request context.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// SetClaimsInContext adds session claims to the context.
func SetClaimsInContext(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
