package controllers

import (
	"net/http"

	"github.com/elizabethadegbaju/crystalims/api/middleware"
	"github.com/elizabethadegbaju/crystalims/api/responses"
	"github.com/elizabethadegbaju/crystalims/api/validators"
	"github.com/elizabethadegbaju/crystalims/internal/allocations"
	"github.com/elizabethadegbaju/crystalims/internal/employees"
	"github.com/elizabethadegbaju/crystalims/internal/messaging"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
)

const maxAvatarBytes = 5 << 20

// ProfileGet returns the caller's own profile alongside their allocations
// and unread message counts.
func ProfileGet(employeesSvc employees.Service, allocationsSvc allocations.Service, messagingSvc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		profile, err := employeesSvc.Profile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mine, err := allocationsSvc.ListMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unread, err := messagingSvc.Unread(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"profile":     profile,
			"allocations": mine,
			"unread":      unread,
		})
	}
}

// ProfileUpdate edits the caller's own profile fields.
func ProfileUpdate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input employees.ProfileInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), middleware.CompanyIDFromContext(r.Context()), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ProfileAvatarUpload replaces the caller's avatar from a multipart upload.
func ProfileAvatarUpload(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "avatar file is required"))
			return
		}
		defer file.Close()

		url, err := svc.UploadAvatar(r.Context(), middleware.UserIDFromContext(r.Context()), header.Header.Get("Content-Type"), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"avatar_url": url})
	}
}
