package purchasing

import (
	"context"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for purchase orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, orderID uuid.UUID) (*models.PurchaseOrder, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PurchaseOrder, error)
	Transition(ctx context.Context, orderID uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error)
	CountOpen(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a purchase order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, companyID, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		First(&order, "id = ? AND company_id = ?", orderID, companyID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition moves an order between statuses. The from-guard settles racing
// transitions in favor of the first writer.
func (r *repository) Transition(ctx context.Context, orderID uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CountOpen(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("company_id = ? AND status IN ?", companyID,
			[]enums.PurchaseOrderStatus{enums.PurchaseOrderStatusQueued, enums.PurchaseOrderStatusSent}).
		Count(&count).Error
	return count, err
}
