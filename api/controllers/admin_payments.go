package controllers

import (
	"net/http"

	"github.com/minhvu-dev/accountshop-backend/api/middleware"
	"github.com/minhvu-dev/accountshop-backend/api/responses"
	"github.com/minhvu-dev/accountshop-backend/api/validators"
	"github.com/minhvu-dev/accountshop-backend/internal/payments"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
)

type paymentSettingsRequest struct {
	BankID        string `json:"bank_id" validate:"required"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number" validate:"required"`
	AccountName   string `json:"account_name,omitempty"`
	QRTemplate    string `json:"qr_template,omitempty"`
}

// AdminPaymentSettings returns the active receiving bank account.
func AdminPaymentSettings(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.ActiveSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// AdminPaymentSettingsUpdate swaps the active receiving bank account.
func AdminPaymentSettingsUpdate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := middleware.PrincipalFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.UpdateSettings(r.Context(), payments.Actor{
			UserID:    principal.UserID,
			Role:      principal.Role,
			IPAddress: middleware.ClientIP(r),
		}, payments.SettingsInput{
			BankID:        body.BankID,
			BankName:      body.BankName,
			AccountNumber: body.AccountNumber,
			AccountName:   body.AccountName,
			QRTemplate:    body.QRTemplate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settings)
	}
}
