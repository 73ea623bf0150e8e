package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmfactory/pizzeria-backend/api/responses"
	"github.com/mmfactory/pizzeria-backend/pkg/auth"
	"github.com/mmfactory/pizzeria-backend/pkg/config"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

type contextKey string

const ctxAdminToken contextKey = "admin_token"

// AdminClaimsFromContext returns the verified dashboard claims, or nil when
// the request did not pass AdminAuth.
func AdminClaimsFromContext(ctx context.Context) *auth.AdminTokenClaims {
	if ctx == nil {
		return nil
	}
	if claims, ok := ctx.Value(ctxAdminToken).(*auth.AdminTokenClaims); ok {
		return claims
	}
	return nil
}

// AdminAuth guards dashboard routes behind a bearer token minted at login.
func AdminAuth(cfg config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := bearerToken(r)
			if raw == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := auth.ParseAdminToken(cfg, raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin token"))
				return
			}

			ctx = context.WithValue(ctx, ctxAdminToken, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("bearer "):])
}
