package httpx

import (
	"context"
	"net/http"

	"github.com/paskalshop/paskal-shop/internal/auth"
	"github.com/paskalshop/paskal-shop/internal/shop"
)

type ctxKey int

const adminKey ctxKey = iota

// AdminOnly menjaga semua endpoint mutasi admin: tanpa sesi valid -> 401.
func AdminOnly(a *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			admin, err := a.Verify(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), adminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func AdminFromContext(ctx context.Context) *shop.Admin {
	admin, _ := ctx.Value(adminKey).(*shop.Admin)
	return admin
}
