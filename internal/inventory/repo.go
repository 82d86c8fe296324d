package inventory

import (
	"context"
	"strings"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/elizabethadegbaju/crystalims/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilter narrows an item listing. Zero values mean "no filter".
type ListFilter struct {
	CategoryID uuid.UUID
	SupplierID uuid.UUID
	LocationID uuid.UUID
	Condition  enums.Condition
	Search     string
	LowStock   bool
}

// ConditionCount is one slice of the per-condition breakdown.
type ConditionCount struct {
	Condition enums.Condition `gorm:"column:condition" json:"condition"`
	Count     int64           `gorm:"column:count" json:"count"`
}

// Repository manages persistence for items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, companyID, itemID uuid.UUID) (*models.Item, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	List(ctx context.Context, companyID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Item, error)
	Save(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, companyID, itemID uuid.UUID) error
	AdjustAvailable(ctx context.Context, itemID uuid.UUID, delta int) (bool, error)
	Restock(ctx context.Context, itemID uuid.UUID, quantity int) error
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	SumPrices(ctx context.Context, companyID uuid.UUID) (decimal.Decimal, error)
	ConditionCounts(ctx context.Context, companyID uuid.UUID) ([]ConditionCount, error)
	ListLowStock(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Item, error)
	ItemInCompany(ctx context.Context, companyID, itemID uuid.UUID) (bool, error)
	CategoryInCompany(ctx context.Context, companyID, categoryID uuid.UUID) (bool, error)
	SupplierInCompany(ctx context.Context, companyID, supplierID uuid.UUID) (bool, error)
	LocationInCompany(ctx context.Context, companyID, locationID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an item repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetByID(ctx context.Context, companyID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND company_id = ?", itemID, companyID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) SKUExists(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("sku = ?", sku).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Item, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID)

	if filter.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SupplierID != uuid.Nil {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.LocationID != uuid.Nil {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Condition != "" {
		query = query.Where("condition = ?", filter.Condition)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.LowStock {
		query = query.Where("quantity_available <= reorder_point")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var items []models.Item
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, companyID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", itemID, companyID).
		Delete(&models.Item{}).Error
}

// AdjustAvailable applies delta to quantity_available, refusing to go
// negative. The conditional update makes concurrent decrements safe.
func (r *repository) AdjustAvailable(ctx context.Context, itemID uuid.UUID, delta int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND quantity_available + ? >= 0", itemID, delta).
		Update("quantity_available", gorm.Expr("quantity_available + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Restock(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"quantity_purchased": gorm.Expr("quantity_purchased + ?", quantity),
			"quantity_available": gorm.Expr("quantity_available + ?", quantity),
		}).Error
}

func (r *repository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}

func (r *repository) SumPrices(ctx context.Context, companyID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("COALESCE(SUM(price), 0) AS total").
		Where("company_id = ?", companyID).
		Scan(&row).Error
	if err != nil {
		return decimal.Decimal{}, err
	}
	return row.Total, nil
}

func (r *repository) ConditionCounts(ctx context.Context, companyID uuid.UUID) ([]ConditionCount, error) {
	var counts []ConditionCount
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("condition, COUNT(*) AS count").
		Where("company_id = ?", companyID).
		Group("condition").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repository) ListLowStock(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND quantity_available <= reorder_point", companyID).
		Order("quantity_available ASC, sku ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ItemInCompany(ctx context.Context, companyID, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND company_id = ?", itemID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CategoryInCompany(ctx context.Context, companyID, categoryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND company_id = ?", categoryID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) SupplierInCompany(ctx context.Context, companyID, supplierID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ? AND company_id = ?", supplierID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) LocationInCompany(ctx context.Context, companyID, locationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Location{}).
		Where("id = ? AND company_id = ?", locationID, companyID).
		Count(&count).Error
	return count > 0, err
}
