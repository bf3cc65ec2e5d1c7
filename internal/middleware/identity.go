// internal/middleware/identity.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// identityKey carries the authenticated subject through the request context.
const identityKey contextKey = "identity"

// Identity carries what the external provider asserts about the caller.
// Authentication itself is delegated; the middleware only verifies the
// token signature and lifts the subject out.
type Identity struct {
	Subject string
}

// IdentityFromContext returns the caller's identity, if a valid token was
// presented.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// WithIdentity returns a copy of ctx carrying the identity. Exposed for
// handler tests.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ExtractIdentity parses an optional bearer token and, when it validates,
// attaches the subject to the request context. Requests without a token (or
// with a bad one) continue anonymously; endpoints that need an identity
// enforce it with RequireIdentity.
func ExtractIdentity(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validateToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{Subject: subject})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests that carry no authenticated identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"authentication required"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validateToken(tokenString, secret string) (jwt.Claims, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			// Verify signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return token.Claims, nil
}
