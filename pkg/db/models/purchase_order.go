package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elizabethadegbaju/crystalims/pkg/enums"
)

// PurchaseOrder is a manual replenishment record for an item.
type PurchaseOrder struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID                 `gorm:"column:item_id;type:uuid;not null;index"`
	CompanyID uuid.UUID                 `gorm:"column:company_id;type:uuid;not null;index"`
	Quantity  int                       `gorm:"column:quantity;not null"`
	Status    enums.PurchaseOrderStatus `gorm:"column:status;type:text;not null;default:'queued'"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
