package authz

import (
	"context"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads membership grants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveRoles(ctx context.Context, userID, companyID uuid.UUID) ([]enums.MemberRole, error)
	ActiveMembership(ctx context.Context, userID uuid.UUID) (*models.CompanyMembership, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an authz repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActiveRoles(ctx context.Context, userID, companyID uuid.UUID) ([]enums.MemberRole, error) {
	var roles []enums.MemberRole
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMembership{}).
		Where("user_id = ? AND company_id = ? AND status = ?", userID, companyID, enums.MembershipStatusActive).
		Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// ActiveMembership returns any active membership for the user, used to resolve
// the user's company at login.
func (r *repository) ActiveMembership(ctx context.Context, userID uuid.UUID) (*models.CompanyMembership, error) {
	var membership models.CompanyMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.MembershipStatusActive).
		Order("created_at ASC").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
