package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elizabethadegbaju/crystalims/pkg/enums"
)

// ItemRequest is a status-tracked claim of an item by a user.
type ItemRequest struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ItemID         uuid.UUID           `gorm:"column:item_id;type:uuid;not null;index"`
	UserID         uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status         enums.RequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ApproverUserID *uuid.UUID          `gorm:"column:approver_user_id;type:uuid"`
	FulfilledAt    *time.Time          `gorm:"column:fulfilled_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
