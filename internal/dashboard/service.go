package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/elizabethadegbaju/crystalims/internal/allocations"
	"github.com/elizabethadegbaju/crystalims/internal/catalog"
	"github.com/elizabethadegbaju/crystalims/internal/inventory"
	"github.com/elizabethadegbaju/crystalims/internal/itemlog"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	mostRequestedLimit = 10
	lowStockLimit      = 10
)

type itemStats interface {
	CountItems(ctx context.Context, companyID uuid.UUID) (int64, error)
	AssetsValue(ctx context.Context, companyID uuid.UUID) (decimal.Decimal, error)
	ConditionBreakdown(ctx context.Context, companyID uuid.UUID) ([]inventory.ConditionCount, error)
	LowStock(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Item, error)
}

type teamStats interface {
	TeamCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type allocationStats interface {
	PendingItemCount(ctx context.Context, companyID uuid.UUID) (int64, error)
	ActiveCount(ctx context.Context, companyID uuid.UUID) (int64, error)
	MostRequested(ctx context.Context, companyID uuid.UUID, limit int) ([]allocations.ItemDemand, error)
}

type requestStats interface {
	PendingCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type orderStats interface {
	OpenCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type categoryStats interface {
	CategoriesWithCounts(ctx context.Context, companyID uuid.UUID) ([]catalog.CategoryCount, error)
}

type valueSeries interface {
	Series(ctx context.Context, companyID uuid.UUID, year int) ([]itemlog.PeriodValue, error)
}

// ConditionShare is one condition's slice of the inventory, as a percentage
// of all items.
type ConditionShare struct {
	Condition string  `json:"condition"`
	Count     int64   `json:"count"`
	Percent   float64 `json:"percent"`
}

// Overview is the aggregate snapshot backing the landing page.
type Overview struct {
	ItemCount           int64                    `json:"item_count"`
	FreeItems           int64                    `json:"free_items"`
	AssetsValue         decimal.Decimal          `json:"assets_value"`
	EmployeeCount       int64                    `json:"employee_count"`
	PendingClaimedItems int64                    `json:"pending_claimed_items"`
	ActiveAllocations   int64                    `json:"active_allocations"`
	PendingRequests     int64                    `json:"pending_requests"`
	OpenPurchaseOrders  int64                    `json:"open_purchase_orders"`
	MostRequested       []allocations.ItemDemand `json:"most_requested"`
	Categories          []catalog.CategoryCount  `json:"categories"`
	Conditions          []ConditionShare         `json:"conditions"`
	LowStock            []models.Item            `json:"low_stock"`
	InventoryValue      []itemlog.PeriodValue    `json:"inventory_value"`
}

// Service assembles the company dashboard from the other domains.
type Service interface {
	Overview(ctx context.Context, companyID uuid.UUID) (*Overview, error)
}

type service struct {
	items       itemStats
	team        teamStats
	allocations allocationStats
	requests    requestStats
	orders      orderStats
	categories  categoryStats
	ledger      valueSeries
	now         func() time.Time
}

// NewService wires a dashboard service from the domain services it reads.
func NewService(
	items itemStats,
	team teamStats,
	allocations allocationStats,
	requests requestStats,
	orders orderStats,
	categories categoryStats,
	ledger valueSeries,
) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("item stats required")
	}
	if team == nil {
		return nil, fmt.Errorf("team stats required")
	}
	if allocations == nil {
		return nil, fmt.Errorf("allocation stats required")
	}
	if requests == nil {
		return nil, fmt.Errorf("request stats required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order stats required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category stats required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("value series required")
	}
	return &service{
		items:       items,
		team:        team,
		allocations: allocations,
		requests:    requests,
		orders:      orders,
		categories:  categories,
		ledger:      ledger,
		now:         time.Now,
	}, nil
}

func (s *service) Overview(ctx context.Context, companyID uuid.UUID) (*Overview, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}

	overview := &Overview{}
	var err error

	if overview.ItemCount, err = s.items.CountItems(ctx, companyID); err != nil {
		return nil, err
	}
	if overview.AssetsValue, err = s.items.AssetsValue(ctx, companyID); err != nil {
		return nil, err
	}
	if overview.EmployeeCount, err = s.team.TeamCount(ctx, companyID); err != nil {
		return nil, err
	}
	if overview.PendingClaimedItems, err = s.allocations.PendingItemCount(ctx, companyID); err != nil {
		return nil, err
	}
	if overview.ActiveAllocations, err = s.allocations.ActiveCount(ctx, companyID); err != nil {
		return nil, err
	}
	if overview.PendingRequests, err = s.requests.PendingCount(ctx, companyID); err != nil {
		return nil, err
	}
	if overview.OpenPurchaseOrders, err = s.orders.OpenCount(ctx, companyID); err != nil {
		return nil, err
	}

	// Items not tied up by a pending claim or an active allocation. The
	// figure can dip below zero when one item carries several claims.
	overview.FreeItems = overview.ItemCount - (overview.PendingClaimedItems + overview.ActiveAllocations)

	if overview.MostRequested, err = s.allocations.MostRequested(ctx, companyID, mostRequestedLimit); err != nil {
		return nil, err
	}
	if overview.Categories, err = s.categories.CategoriesWithCounts(ctx, companyID); err != nil {
		return nil, err
	}

	counts, err := s.items.ConditionBreakdown(ctx, companyID)
	if err != nil {
		return nil, err
	}
	overview.Conditions = conditionShares(counts, overview.ItemCount)

	if overview.LowStock, err = s.items.LowStock(ctx, companyID, lowStockLimit); err != nil {
		return nil, err
	}
	if overview.InventoryValue, err = s.ledger.Series(ctx, companyID, s.now().Year()); err != nil {
		return nil, err
	}
	return overview, nil
}

// conditionShares converts raw counts to percentages of the whole inventory,
// rounded to one decimal place.
func conditionShares(counts []inventory.ConditionCount, total int64) []ConditionShare {
	shares := make([]ConditionShare, 0, len(counts))
	for _, count := range counts {
		share := ConditionShare{Condition: string(count.Condition), Count: count.Count}
		if total > 0 {
			share.Percent = math.Round(float64(count.Count)/float64(total)*1000) / 10
		}
		shares = append(shares, share)
	}
	return shares
}
