// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const (
	passkeyKey  ctxKey = "passkey"
	categoryKey ctxKey = "category"
)

// PasskeyHeader carries the bearer passkey on tracking requests.
const PasskeyHeader = "X-Passkey"

// CategoryHeader carries the selected grant category. A passkey only
// authenticates into the category it was issued for, so the two always
// travel together.
const CategoryHeader = "X-Grant-Category"

// PasskeyAuth is a middleware that requires a passkey on tracking routes.
//
// It checks that the request carries both the passkey and the grant
// category headers and stores them in the request context. Validation of
// the passkey against the record store happens in the handler, so a bad
// passkey gets the flow's own invalid-passkey answer rather than a bare 401.
func PasskeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pk := r.Header.Get(PasskeyHeader)
		category := r.Header.Get(CategoryHeader)
		if pk == "" || category == "" {
			http.Error(w, "passkey and grant category required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), passkeyKey, pk)
		ctx = context.WithValue(ctx, categoryKey, category)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPasskeyFromContext extracts the passkey stored by PasskeyAuth.
// Returns an empty string if not found.
func GetPasskeyFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(passkeyKey).(string); ok {
		return s
	}
	return ""
}

// GetCategoryFromContext extracts the grant category stored by PasskeyAuth.
// Returns an empty string if not found.
func GetCategoryFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(categoryKey).(string); ok {
		return s
	}
	return ""
}
