package itemlog

import (
	"context"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository manages the monthly inventory value rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, companyID uuid.UUID, month string, year int, delta decimal.Decimal) error
	GetPeriod(ctx context.Context, companyID uuid.UUID, month string, year int) (*models.ItemLog, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ItemLog, error)
	ListByYear(ctx context.Context, companyID uuid.UUID, year int) ([]models.ItemLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an item log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Increment adds delta to the period row, creating it when absent. The single
// upsert keeps concurrent adjustments from producing duplicate period rows.
func (r *repository) Increment(ctx context.Context, companyID uuid.UUID, month string, year int, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO item_logs (id, company_id, month, year, inventory_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (company_id, month, year)
		DO UPDATE SET inventory_value = item_logs.inventory_value + excluded.inventory_value,
		              updated_at = CURRENT_TIMESTAMP`,
		uuid.New(), companyID, month, year, delta,
	).Error
}

func (r *repository) GetPeriod(ctx context.Context, companyID uuid.UUID, month string, year int) (*models.ItemLog, error) {
	var row models.ItemLog
	err := r.db.WithContext(ctx).
		First(&row, "company_id = ? AND month = ? AND year = ?", companyID, month, year).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ItemLog, error) {
	var rows []models.ItemLog
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("year ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByYear(ctx context.Context, companyID uuid.UUID, year int) ([]models.ItemLog, error) {
	var rows []models.ItemLog
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND year = ?", companyID, year).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
