package controllers

import (
	"net/http"

	"github.com/mmfactory/pizzeria-backend/api/middleware"
	"github.com/mmfactory/pizzeria-backend/api/responses"
	"github.com/mmfactory/pizzeria-backend/api/validators"
	checkoutsvc "github.com/mmfactory/pizzeria-backend/internal/checkout"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

// CheckoutPickup submits the cart as a pay-at-pickup order.
func CheckoutPickup(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		cartID := middleware.CartIDFromContext(r.Context())
		if cartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
			return
		}

		var contact checkoutsvc.ContactInput
		if err := validators.DecodeJSONBody(r, &contact); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SubmitPickup(r.Context(), cartID, contact)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CheckoutCardSession opens a hosted card payment session for the cart. The
// order itself is only created once the payment webhook fires.
func CheckoutCardSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		cartID := middleware.CartIDFromContext(r.Context())
		if cartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
			return
		}

		var contact checkoutsvc.ContactInput
		if err := validators.DecodeJSONBody(r, &contact); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redirect, err := svc.StartCardPayment(r.Context(), cartID, contact)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, redirect)
	}
}
