package controllers

import (
	"net/http"

	"github.com/elizabethadegbaju/crystalims/api/middleware"
	"github.com/elizabethadegbaju/crystalims/api/responses"
	"github.com/elizabethadegbaju/crystalims/internal/dashboard"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
)

// DashboardOverview returns the tenant's aggregate numbers.
func DashboardOverview(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := svc.Overview(r.Context(), middleware.CompanyIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, overview)
	}
}
