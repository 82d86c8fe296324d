package purchasing

import (
	"context"
	"fmt"

	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
)

// allowedTransitions maps each status to the statuses it may move to.
var allowedTransitions = map[enums.PurchaseOrderStatus][]enums.PurchaseOrderStatus{
	enums.PurchaseOrderStatusQueued: {enums.PurchaseOrderStatusSent, enums.PurchaseOrderStatusCancelled},
	enums.PurchaseOrderStatusSent:   {enums.PurchaseOrderStatusFulfilled, enums.PurchaseOrderStatusCancelled},
}

func transitionAllowed(from, to enums.PurchaseOrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

type restocker interface {
	ItemInCompany(ctx context.Context, companyID, itemID uuid.UUID) (bool, error)
	Restock(ctx context.Context, companyID, itemID uuid.UUID, quantity int) (*models.Item, error)
}

// Service manages manual replenishment orders.
type Service interface {
	Create(ctx context.Context, companyID, itemID uuid.UUID, quantity int) (*models.PurchaseOrder, error)
	Get(ctx context.Context, companyID, orderID uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, companyID uuid.UUID) ([]models.PurchaseOrder, error)
	Advance(ctx context.Context, companyID, orderID uuid.UUID, to enums.PurchaseOrderStatus) (*models.PurchaseOrder, error)
	OpenCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type service struct {
	repo  Repository
	items restocker
}

// NewService wires a purchasing service with its repository and the
// inventory restocker.
func NewService(repo Repository, items restocker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase order repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("restocker required")
	}
	return &service{repo: repo, items: items}, nil
}

func (s *service) Create(ctx context.Context, companyID, itemID uuid.UUID, quantity int) (*models.PurchaseOrder, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	ok, err := s.items.ItemInCompany(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	order := &models.PurchaseOrder{
		ItemID:    itemID,
		CompanyID: companyID,
		Quantity:  quantity,
		Status:    enums.PurchaseOrderStatusQueued,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, companyID, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.repo.GetByID(ctx, companyID, orderID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "purchase order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, companyID uuid.UUID) ([]models.PurchaseOrder, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListByCompany(ctx, companyID)
}

// Advance moves the order along its lifecycle. Fulfilling an order restocks
// the item with the ordered quantity.
func (s *service) Advance(ctx context.Context, companyID, orderID uuid.UUID, to enums.PurchaseOrderStatus) (*models.PurchaseOrder, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase order status %q", to))
	}
	order, err := s.repo.GetByID(ctx, companyID, orderID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "purchase order")
	}
	if !transitionAllowed(order.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}

	moved, err := s.repo.Transition(ctx, orderID, order.Status, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	if to == enums.PurchaseOrderStatusFulfilled {
		if _, err := s.items.Restock(ctx, companyID, order.ItemID, order.Quantity); err != nil {
			return nil, err
		}
	}

	order.Status = to
	return order, nil
}

func (s *service) OpenCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountOpen(ctx, companyID)
}
