package itemlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Period identifies one ledger month. Month is the English three-letter
// abbreviation ("Jan" .. "Dec").
type Period struct {
	Month string
	Year  int
}

// PeriodFor derives the ledger period from a point in time.
func PeriodFor(t time.Time) Period {
	return Period{Month: t.Format("Jan"), Year: t.Year()}
}

// PeriodValue is one point of the inventory value series.
type PeriodValue struct {
	Period Period          `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

// Service maintains the running monthly inventory value per company.
type Service interface {
	RecordAddition(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, amount decimal.Decimal, at time.Time) error
	Series(ctx context.Context, companyID uuid.UUID, year int) ([]PeriodValue, error)
}

type service struct {
	repo Repository
}

// NewService wires an item log service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item log repository required")
	}
	return &service{repo: repo}, nil
}

// RecordAddition adds amount to the ledger row for the month containing at.
// Callers pass their transaction so the bump commits with the item write.
func (s *service) RecordAddition(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, amount decimal.Decimal, at time.Time) error {
	if companyID == uuid.Nil {
		return fmt.Errorf("company id is required")
	}
	if amount.IsNegative() {
		return fmt.Errorf("ledger additions must not be negative")
	}
	if amount.IsZero() {
		return nil
	}
	period := PeriodFor(at)
	return s.repo.WithTx(tx).Increment(ctx, companyID, period.Month, period.Year, amount)
}

// Series returns the ledger months of one calendar year in January-to-
// December order. Months without a ledger entry are omitted, not zero-filled.
func (s *service) Series(ctx context.Context, companyID uuid.UUID, year int) ([]PeriodValue, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if year <= 0 {
		return nil, fmt.Errorf("year is required")
	}

	rows, err := s.repo.ListByYear(ctx, companyID, year)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.InventoryValue
	}

	series := make([]PeriodValue, 0, len(rows))
	for month := time.January; month <= time.December; month++ {
		name := month.String()[:3]
		value, ok := byMonth[name]
		if !ok {
			continue
		}
		series = append(series, PeriodValue{Period: Period{Month: name, Year: year}, Value: value})
	}
	return series, nil
}
