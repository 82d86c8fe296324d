package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elizabethadegbaju/crystalims/internal/itemlog"
	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/elizabethadegbaju/crystalims/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateItemInput carries the fields needed to register an item.
type CreateItemInput struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=64"`
	Description       string          `json:"description" validate:"required,min=1,max=500"`
	Price             decimal.Decimal `json:"price"`
	Condition         enums.Condition `json:"condition" validate:"required"`
	QuantityPurchased int             `json:"quantity_purchased" validate:"min=0"`
	ReorderPoint      int             `json:"reorder_point" validate:"min=0"`
	LeadTimeDays      *int            `json:"lead_time_days" validate:"omitempty,min=0"`
	Returnable        bool            `json:"returnable"`
	CategoryID        uuid.UUID       `json:"category_id" validate:"required"`
	SupplierID        *uuid.UUID      `json:"supplier_id"`
	LocationID        *uuid.UUID      `json:"location_id"`
}

// UpdateItemInput carries the mutable item fields. The SKU is immutable and
// deliberately absent.
type UpdateItemInput struct {
	Description  string          `json:"description" validate:"required,min=1,max=500"`
	Price        decimal.Decimal `json:"price"`
	Condition    enums.Condition `json:"condition" validate:"required"`
	ReorderPoint int             `json:"reorder_point" validate:"min=0"`
	LeadTimeDays *int            `json:"lead_time_days" validate:"omitempty,min=0"`
	Returnable   bool            `json:"returnable"`
	CategoryID   uuid.UUID       `json:"category_id" validate:"required"`
	SupplierID   *uuid.UUID      `json:"supplier_id"`
	LocationID   *uuid.UUID      `json:"location_id"`
}

// ListResult is one page of items plus the cursor for the next page.
type ListResult struct {
	Items      []models.Item `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// Service manages the item catalog and its stock counters.
type Service interface {
	Create(ctx context.Context, companyID uuid.UUID, input CreateItemInput) (*models.Item, error)
	Get(ctx context.Context, companyID, itemID uuid.UUID) (*models.Item, error)
	List(ctx context.Context, companyID uuid.UUID, filter ListFilter, params pagination.Params) (*ListResult, error)
	Update(ctx context.Context, companyID, itemID uuid.UUID, input UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, companyID, itemID uuid.UUID) error
	Restock(ctx context.Context, companyID, itemID uuid.UUID, quantity int) (*models.Item, error)
	ItemInCompany(ctx context.Context, companyID, itemID uuid.UUID) (bool, error)
	CountItems(ctx context.Context, companyID uuid.UUID) (int64, error)
	AssetsValue(ctx context.Context, companyID uuid.UUID) (decimal.Decimal, error)
	ConditionBreakdown(ctx context.Context, companyID uuid.UUID) ([]ConditionCount, error)
	LowStock(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Item, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	ledger itemlog.Service
	tx     txRunner
	now    func() time.Time
}

// NewService wires an inventory service with its repository, the value
// ledger, and a transaction runner.
func NewService(repo Repository, ledger itemlog.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("item log service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, ledger: ledger, tx: tx, now: time.Now}, nil
}

// Create registers an item and adds its purchase value to the current ledger
// month. Both writes commit or roll back together.
func (s *service) Create(ctx context.Context, companyID uuid.UUID, input CreateItemInput) (*models.Item, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid condition %q", input.Condition))
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.QuantityPurchased < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity purchased must not be negative")
	}

	if err := s.checkReferences(ctx, companyID, input.CategoryID, input.SupplierID, input.LocationID); err != nil {
		return nil, err
	}

	exists, err := s.repo.SKUExists(ctx, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
	}

	quantity := input.QuantityPurchased
	if quantity == 0 {
		quantity = 1
	}

	item := &models.Item{
		SKU:               sku,
		Description:       strings.TrimSpace(input.Description),
		Price:             input.Price,
		Condition:         input.Condition,
		QuantityPurchased: quantity,
		QuantityAvailable: quantity,
		ReorderPoint:      input.ReorderPoint,
		LeadTimeDays:      input.LeadTimeDays,
		Returnable:        input.Returnable,
		CategoryID:        input.CategoryID,
		SupplierID:        input.SupplierID,
		LocationID:        input.LocationID,
		CompanyID:         companyID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		value := item.Price.Mul(decimal.NewFromInt(int64(quantity)))
		return s.ledger.RecordAddition(ctx, tx, companyID, value, s.now())
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, companyID, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, companyID, itemID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, companyID uuid.UUID, filter ListFilter, params pagination.Params) (*ListResult, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	items, err := s.repo.List(ctx, companyID, filter, limit+1, cursor)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		last := result.Items[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, companyID, itemID uuid.UUID, input UpdateItemInput) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, companyID, itemID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "item")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid condition %q", input.Condition))
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if err := s.checkReferences(ctx, companyID, input.CategoryID, input.SupplierID, input.LocationID); err != nil {
		return nil, err
	}

	item.Description = strings.TrimSpace(input.Description)
	item.Price = input.Price
	item.Condition = input.Condition
	item.ReorderPoint = input.ReorderPoint
	item.LeadTimeDays = input.LeadTimeDays
	item.Returnable = input.Returnable
	item.CategoryID = input.CategoryID
	item.SupplierID = input.SupplierID
	item.LocationID = input.LocationID

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, companyID, itemID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, companyID, itemID); err != nil {
		return pkgdb.AsLookupError(err, "item")
	}
	return s.repo.Delete(ctx, companyID, itemID)
}

// Restock raises both stock counters and books the added value into the
// ledger month of the restock.
func (s *service) Restock(ctx context.Context, companyID, itemID uuid.UUID, quantity int) (*models.Item, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	item, err := s.repo.GetByID(ctx, companyID, itemID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "item")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Restock(ctx, itemID, quantity); err != nil {
			return err
		}
		value := item.Price.Mul(decimal.NewFromInt(int64(quantity)))
		return s.ledger.RecordAddition(ctx, tx, companyID, value, s.now())
	})
	if err != nil {
		return nil, err
	}

	item.QuantityPurchased += quantity
	item.QuantityAvailable += quantity
	return item, nil
}

func (s *service) ItemInCompany(ctx context.Context, companyID, itemID uuid.UUID) (bool, error) {
	return s.repo.ItemInCompany(ctx, companyID, itemID)
}

func (s *service) CountItems(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountByCompany(ctx, companyID)
}

// AssetsValue sums the unit prices of every item the company owns.
func (s *service) AssetsValue(ctx context.Context, companyID uuid.UUID) (decimal.Decimal, error) {
	if companyID == uuid.Nil {
		return decimal.Decimal{}, fmt.Errorf("company id is required")
	}
	return s.repo.SumPrices(ctx, companyID)
}

func (s *service) ConditionBreakdown(ctx context.Context, companyID uuid.UUID) ([]ConditionCount, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ConditionCounts(ctx, companyID)
}

func (s *service) LowStock(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Item, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	return s.repo.ListLowStock(ctx, companyID, limit)
}

func (s *service) checkReferences(ctx context.Context, companyID, categoryID uuid.UUID, supplierID, locationID *uuid.UUID) error {
	if categoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	ok, err := s.repo.CategoryInCompany(ctx, companyID, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not belong to company")
	}
	if supplierID != nil && *supplierID != uuid.Nil {
		ok, err := s.repo.SupplierInCompany(ctx, companyID, *supplierID)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "supplier does not belong to company")
		}
	}
	if locationID != nil && *locationID != uuid.Nil {
		ok, err := s.repo.LocationInCompany(ctx, companyID, *locationID)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "location does not belong to company")
		}
	}
	return nil
}
