package controllers

import (
	"net/http"

	"github.com/minhvu-dev/accountshop-backend/api/middleware"
	"github.com/minhvu-dev/accountshop-backend/api/responses"
	"github.com/minhvu-dev/accountshop-backend/api/validators"
	"github.com/minhvu-dev/accountshop-backend/internal/checkout"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// Checkout converts the caller's cart into a pending order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := middleware.PrincipalFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), principal.UserID, checkout.Input{
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			CustomerPhone: body.CustomerPhone,
			PaymentMethod: enums.PaymentMethod(body.PaymentMethod),
			IPAddress:     middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
