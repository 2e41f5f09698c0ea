package controllers

import (
	"net/http"

	"github.com/minhvu-dev/accountshop-backend/api/responses"
	"github.com/minhvu-dev/accountshop-backend/internal/stats"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
)

// AdminDashboard returns stock, order pipeline, and revenue aggregates.
func AdminDashboard(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dash, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dash)
	}
}
