package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elizabethadegbaju/crystalims/pkg/enums"
)

// CompanyMembership grants a user a role within a company. A user can hold
// several roles; the founding user holds both admin and superuser.
type CompanyMembership struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID       uuid.UUID              `gorm:"column:company_id;type:uuid;not null;index"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Role            enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:text;not null"`
	GrantedByUserID *uuid.UUID             `gorm:"column:granted_by_user_id;type:uuid"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
