package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvu-dev/accountshop-backend/api/responses"
	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
)

// CatalogList serves the public storefront listing. Only available
// accounts are returned unless a state filter says otherwise.
func CatalogList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := catalogFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListCatalog(r.Context(), filters, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// CatalogDetail serves one public catalog entry.
func CatalogDetail(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "accountId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid account id"))
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

func catalogFilters(r *http.Request) (accounts.CatalogFilters, error) {
	var filters accounts.CatalogFilters
	query := r.URL.Query()

	if category := query.Get("category"); category != "" {
		filters.Category = &category
	}
	if rank := query.Get("rank"); rank != "" {
		filters.Rank = &rank
	}
	if raw := query.Get("state"); raw != "" {
		state := enums.AccountState(raw)
		if !state.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid state filter")
		}
		filters.State = &state
		filters.IncludeClosed = true
	}
	if raw := query.Get("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid min_price")
		}
		filters.MinPrice = &price
	}
	if raw := query.Get("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid max_price")
		}
		filters.MaxPrice = &price
	}
	return filters, nil
}
