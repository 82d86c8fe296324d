package db

import (
	stdErrors "errors"

	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"gorm.io/gorm"
)

// IsNotFound reports whether err is GORM's missing-record sentinel.
func IsNotFound(err error) bool {
	return stdErrors.Is(err, gorm.ErrRecordNotFound)
}

// AsLookupError maps a GORM read error onto the service error taxonomy.
func AsLookupError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
