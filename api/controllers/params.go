package controllers

import (
	"net/http"
	"strconv"

	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

func pageParams(r *http.Request) pagination.Params {
	params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			params.Limit = limit
		}
	}
	return params
}
