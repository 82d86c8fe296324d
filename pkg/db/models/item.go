package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elizabethadegbaju/crystalims/pkg/enums"
)

// Item is a trackable asset identified by a unique, immutable SKU. It merges
// the serialized-equipment and stock-keeping generations of the schema:
// condition grades a single asset, the quantity counters track stock.
type Item struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU               string          `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Description       string          `gorm:"type:text;not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Condition         enums.Condition `gorm:"column:condition;type:text;not null"`
	QuantityPurchased int             `gorm:"column:quantity_purchased;not null;default:1"`
	QuantityAvailable int             `gorm:"column:quantity_available;not null;default:1"`
	ReorderPoint      int             `gorm:"column:reorder_point;not null;default:0"`
	LeadTimeDays      *int            `gorm:"column:lead_time_days"`
	Returnable        bool            `gorm:"column:returnable;not null;default:false"`
	CategoryID        uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	SupplierID        *uuid.UUID      `gorm:"column:supplier_id;type:uuid;index"`
	LocationID        *uuid.UUID      `gorm:"column:location_id;type:uuid;index"`
	CompanyID         uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
