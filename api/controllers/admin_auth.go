package controllers

import (
	"net/http"

	"github.com/mmfactory/pizzeria-backend/api/responses"
	"github.com/mmfactory/pizzeria-backend/api/validators"
	adminsvc "github.com/mmfactory/pizzeria-backend/internal/admin"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

type adminLoginRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

// AdminLogin exchanges the shared passphrase for a dashboard bearer token.
func AdminLogin(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), payload.Passphrase)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// AdminSession confirms the caller's token is still valid.
func AdminSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "authenticated"})
	}
}
