package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elizabethadegbaju/crystalims/api/middleware"
	"github.com/elizabethadegbaju/crystalims/api/responses"
	"github.com/elizabethadegbaju/crystalims/api/validators"
	"github.com/elizabethadegbaju/crystalims/internal/allocations"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
)

// AllocationCreate claims an item for a date range. New claims start pending.
func AllocationCreate(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input allocations.CreateAllocationInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), middleware.CompanyIDFromContext(r.Context()), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// AllocationListMine returns the caller's own claims.
func AllocationListMine(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.ListMine(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// AllocationListCompany returns every claim in the caller's company.
func AllocationListCompany(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.ListCompany(r.Context(), middleware.CompanyIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

type allocationDecisionRequest struct {
	Approve bool `json:"approve"`
}

// AllocationDecide records an approve/deny verdict. Only the first lands.
func AllocationDecide(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allocationID, err := validators.ParsePathUUID(chi.URLParam(r, "allocationId"), "allocationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req allocationDecisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Decide(r.Context(), middleware.CompanyIDFromContext(r.Context()), allocationID, middleware.UserIDFromContext(r.Context()), req.Approve)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// AllocationCheckIn marks an approved allocation as returned.
func AllocationCheckIn(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allocationID, err := validators.ParsePathUUID(chi.URLParam(r, "allocationId"), "allocationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		view, err := svc.CheckIn(ctx, middleware.CompanyIDFromContext(ctx), allocationID, middleware.UserIDFromContext(ctx), middleware.ActorManages(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
