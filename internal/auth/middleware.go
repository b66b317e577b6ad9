package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// errNoBearer is returned when the Authorization header is absent or
// isn't a Bearer credential.
var errNoBearer = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write
// the username value — a plain string key could be shadowed by any
// package that happens to know it.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the bearer token from the Authorization header, resolves it,
// and stores the username in the request context. Missing, malformed,
// expired, or tampered tokens all get the same 401 — the response never
// hints at which check failed.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := resolveBearer(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"valid bearer token required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated username from the
// request context.
//
// Returns ("", false) if the request is anonymous. On a route behind
// RequireAuth it always returns (username, true), but handlers still
// check the bool rather than trust the wiring.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// resolveBearer extracts and validates the token from an
// "Authorization: Bearer <token>" header.
func resolveBearer(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errNoBearer
	}

	return tokens.Resolve(strings.TrimSpace(token))
}
