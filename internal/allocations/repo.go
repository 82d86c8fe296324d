package allocations

import (
	"context"
	"time"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemDemand is one row of the most-requested ranking.
type ItemDemand struct {
	ItemID      uuid.UUID `gorm:"column:item_id" json:"item_id"`
	SKU         string    `gorm:"column:sku" json:"sku"`
	Description string    `gorm:"column:description" json:"description"`
	Requests    int64     `gorm:"column:requests" json:"requests"`
}

// Repository manages persistence for allocations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, allocation *models.Allocation) error
	GetByID(ctx context.Context, allocationID uuid.UUID) (*models.Allocation, error)
	GetInCompany(ctx context.Context, companyID, allocationID uuid.UUID) (*models.Allocation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Allocation, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Allocation, error)
	Save(ctx context.Context, allocation *models.Allocation) error
	Decide(ctx context.Context, allocationID, approverID uuid.UUID, approved bool) (bool, error)
	MarkCheckedIn(ctx context.Context, allocationID uuid.UUID) (bool, error)
	CountPendingItems(ctx context.Context, companyID uuid.UUID) (int64, error)
	CountApproved(ctx context.Context, companyID uuid.UUID) (int64, error)
	CountActive(ctx context.Context, companyID uuid.UUID, asOf time.Time) (int64, error)
	MostRequestedItems(ctx context.Context, companyID uuid.UUID, limit int) ([]ItemDemand, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an allocation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, allocation *models.Allocation) error {
	return r.db.WithContext(ctx).Create(allocation).Error
}

func (r *repository) GetByID(ctx context.Context, allocationID uuid.UUID) (*models.Allocation, error) {
	var allocation models.Allocation
	if err := r.db.WithContext(ctx).First(&allocation, "id = ?", allocationID).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

// GetInCompany resolves an allocation through its item's company, keeping
// tenancy checks in one query.
func (r *repository) GetInCompany(ctx context.Context, companyID, allocationID uuid.UUID) (*models.Allocation, error) {
	var allocation models.Allocation
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = allocations.item_id").
		Where("allocations.id = ? AND items.company_id = ?", allocationID, companyID).
		First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Allocation, error) {
	var allocations []models.Allocation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Allocation, error) {
	var allocations []models.Allocation
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = allocations.item_id").
		Where("items.company_id = ?", companyID).
		Order("allocations.created_at DESC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *repository) Save(ctx context.Context, allocation *models.Allocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

// Decide records the approver's verdict. The approver guard keeps a second
// decision from overwriting the first.
func (r *repository) Decide(ctx context.Context, allocationID, approverID uuid.UUID, approved bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Where("id = ? AND approver_user_id IS NULL", allocationID).
		Updates(map[string]any{
			"approved":         approved,
			"approver_user_id": approverID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkCheckedIn(ctx context.Context, allocationID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Where("id = ? AND approved = ? AND checked_in = ?", allocationID, true, false).
		Update("checked_in", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountPendingItems counts distinct items with at least one undecided
// allocation.
func (r *repository) CountPendingItems(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Joins("JOIN items ON items.id = allocations.item_id").
		Where("items.company_id = ? AND allocations.approver_user_id IS NULL", companyID).
		Distinct("allocations.item_id").
		Count(&count).Error
	return count, err
}

func (r *repository) CountApproved(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Joins("JOIN items ON items.id = allocations.item_id").
		Where("items.company_id = ? AND allocations.approved = ?", companyID, true).
		Count(&count).Error
	return count, err
}

// MostRequestedItems ranks items by how often they have been claimed. Items
// never claimed still appear with zero requests.
func (r *repository) MostRequestedItems(ctx context.Context, companyID uuid.UUID, limit int) ([]ItemDemand, error) {
	var rows []ItemDemand
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("items.id AS item_id, items.sku, items.description, COUNT(allocations.id) AS requests").
		Joins("LEFT JOIN allocations ON allocations.item_id = items.id").
		Where("items.company_id = ?", companyID).
		Group("items.id, items.sku, items.description").
		Order("requests DESC, items.sku ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountActive counts approved allocations whose start date has elapsed and
// that have not been checked back in.
func (r *repository) CountActive(ctx context.Context, companyID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Joins("JOIN items ON items.id = allocations.item_id").
		Where("items.company_id = ? AND allocations.approved = ? AND allocations.checked_in = ? AND allocations.start_date <= ?",
			companyID, true, false, asOf).
		Count(&count).Error
	return count, err
}
