package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvu-dev/accountshop-backend/api/middleware"
	"github.com/minhvu-dev/accountshop-backend/api/responses"
	"github.com/minhvu-dev/accountshop-backend/api/validators"
	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
)

type accountCreateRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category,omitempty"`
	Rank          string   `json:"rank,omitempty"`
	Price         string   `json:"price" validate:"required"`
	Username      string   `json:"username" validate:"required"`
	Password      string   `json:"password" validate:"required"`
	Images        []string `json:"images,omitempty"`
	InternalNotes string   `json:"internal_notes,omitempty"`
}

type accountUpdateRequest struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Rank          *string  `json:"rank,omitempty"`
	Price         *string  `json:"price,omitempty"`
	Username      *string  `json:"username,omitempty"`
	Password      *string  `json:"password,omitempty"`
	Images        []string `json:"images,omitempty"`
	InternalNotes *string  `json:"internal_notes,omitempty"`
}

func accountActor(r *http.Request) (accounts.Actor, error) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		return accounts.Actor{}, err
	}
	return accounts.Actor{
		UserID:    principal.UserID,
		Role:      principal.Role,
		IPAddress: middleware.ClientIP(r),
	}, nil
}

// AdminAccountCreate stocks a new account in the catalog.
func AdminAccountCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := accountActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body accountCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := decimal.NewFromString(body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price"))
			return
		}

		account, err := svc.Create(r.Context(), actor, accounts.CreateInput{
			Title:         body.Title,
			Description:   body.Description,
			Category:      body.Category,
			Rank:          body.Rank,
			Price:         price,
			Username:      body.Username,
			Password:      body.Password,
			Images:        body.Images,
			InternalNotes: body.InternalNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": account.ID})
	}
}

// AdminAccountUpdate edits an existing catalog entry.
func AdminAccountUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := accountActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "accountId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid account id"))
			return
		}

		var body accountUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := accounts.UpdateInput{
			Title:         body.Title,
			Description:   body.Description,
			Category:      body.Category,
			Rank:          body.Rank,
			Username:      body.Username,
			Password:      body.Password,
			Images:        body.Images,
			InternalNotes: body.InternalNotes,
		}
		if body.Price != nil {
			price, err := decimal.NewFromString(*body.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price"))
				return
			}
			input.Price = &price
		}

		if err := svc.Update(r.Context(), actor, id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// AdminAccountDelete removes an unsold account from the catalog.
func AdminAccountDelete(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := accountActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "accountId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid account id"))
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
