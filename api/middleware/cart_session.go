package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

const (
	cartIDHeader = "X-Cart-Id"
	cartIDCookie = "mmpizza_cart"
)

const ctxCartID contextKey = "cart_id"

// CartIDFromContext returns the shopper's cart identifier set by CartSession.
func CartIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartID).(string); ok {
		return v
	}
	return ""
}

// CartSession resolves the shopper's cart identifier from the request, minting
// a fresh one for first-time visitors. The identifier travels in a cookie with
// a header override for clients that do not share the cookie jar.
func CartSession(ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := strings.TrimSpace(r.Header.Get(cartIDHeader))
			if cartID == "" {
				if cookie, err := r.Cookie(cartIDCookie); err == nil {
					cartID = strings.TrimSpace(cookie.Value)
				}
			}
			if _, err := uuid.Parse(cartID); err != nil {
				cartID = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cartIDCookie,
				Value:    cartID,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(cartIDHeader, cartID)

			ctx := context.WithValue(r.Context(), ctxCartID, cartID)
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
