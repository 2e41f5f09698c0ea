package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/minhvu-dev/accountshop-backend/api/responses"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
)

// AdminAuditList pages through the audit trail, newest first.
func AdminAuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters audit.ListFilters
		query := r.URL.Query()

		if raw := query.Get("actor_id"); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid actor id"))
				return
			}
			filters.ActorID = &actorID
		}
		if raw := query.Get("action"); raw != "" {
			action := enums.AuditAction(raw)
			if !action.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid action filter"))
				return
			}
			filters.Action = &action
		}

		page, err := svc.List(r.Context(), pageParams(r), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
