package http

import (
	"context"
	"net/http"
)

// identityHeader carries the caller's user ID. There is no authentication
// behind it; upstream infrastructure is expected to set it.
const identityHeader = "X-User-ID"

type ctxUserIDKey struct{}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserIDKey{}).(string)
	return id
}

// identityMiddleware requires the identity header and puts the user ID into
// the request context.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(identityHeader)
		if userID == "" {
			http.Error(w, "missing "+identityHeader+" header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware restricts the route to the configured admin identity. With
// no admin configured, all admin routes are closed.
func adminMiddleware(adminUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminUser == "" || userIDFrom(r.Context()) != adminUser {
				http.Error(w, "admin access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
