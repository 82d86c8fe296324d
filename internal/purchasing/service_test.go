package purchasing

import (
	"context"
	"testing"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	orders map[uuid.UUID]*models.PurchaseOrder
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{orders: map[uuid.UUID]*models.PurchaseOrder{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, order *models.PurchaseOrder) error {
	order.ID = uuid.New()
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, companyID, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, ok := f.orders[orderID]
	if !ok || order.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeRepository) ListByCompany(_ context.Context, companyID uuid.UUID) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, order := range f.orders {
		if order.CompanyID == companyID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeRepository) Transition(_ context.Context, orderID uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error) {
	order := f.orders[orderID]
	if order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (f *fakeRepository) CountOpen(_ context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	for _, order := range f.orders {
		if order.CompanyID != companyID {
			continue
		}
		if order.Status == enums.PurchaseOrderStatusQueued || order.Status == enums.PurchaseOrderStatusSent {
			count++
		}
	}
	return count, nil
}

type fakeRestocker struct {
	known     map[uuid.UUID]bool
	restocked map[uuid.UUID]int
}

func (f *fakeRestocker) ItemInCompany(_ context.Context, _, itemID uuid.UUID) (bool, error) {
	return f.known[itemID], nil
}

func (f *fakeRestocker) Restock(_ context.Context, _, itemID uuid.UUID, quantity int) (*models.Item, error) {
	if f.restocked == nil {
		f.restocked = map[uuid.UUID]int{}
	}
	f.restocked[itemID] += quantity
	return &models.Item{ID: itemID}, nil
}

func newTestService(t *testing.T, itemID uuid.UUID) (Service, *fakeRepository, *fakeRestocker) {
	t.Helper()
	repo := newFakeRepository()
	items := &fakeRestocker{known: map[uuid.UUID]bool{itemID: true}}
	svc, err := NewService(repo, items)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo, items
}

func TestCreateQueuesOrder(t *testing.T) {
	itemID := uuid.New()
	svc, _, _ := newTestService(t, itemID)
	companyID := uuid.New()

	order, err := svc.Create(context.Background(), companyID, itemID, 12)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if order.Status != enums.PurchaseOrderStatusQueued {
		t.Fatalf("expected queued, got %s", order.Status)
	}
	if order.Quantity != 12 {
		t.Fatalf("expected quantity 12, got %d", order.Quantity)
	}
}

func TestCreateRejectsUnknownItemAndBadQuantity(t *testing.T) {
	svc, _, _ := newTestService(t, uuid.New())
	companyID := uuid.New()

	_, err := svc.Create(context.Background(), companyID, uuid.New(), 5)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign item must be not found, got %v", err)
	}

	_, err = svc.Create(context.Background(), companyID, uuid.New(), 0)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("zero quantity must fail validation, got %v", err)
	}
}

func TestFulfillmentRestocksItem(t *testing.T) {
	itemID := uuid.New()
	svc, _, items := newTestService(t, itemID)
	companyID := uuid.New()

	order, err := svc.Create(context.Background(), companyID, itemID, 8)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Advance(context.Background(), companyID, order.ID, enums.PurchaseOrderStatusSent); err != nil {
		t.Fatalf("Advance to sent error: %v", err)
	}
	fulfilled, err := svc.Advance(context.Background(), companyID, order.ID, enums.PurchaseOrderStatusFulfilled)
	if err != nil {
		t.Fatalf("Advance to fulfilled error: %v", err)
	}
	if fulfilled.Status != enums.PurchaseOrderStatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", fulfilled.Status)
	}
	if items.restocked[itemID] != 8 {
		t.Fatalf("expected restock of 8, got %d", items.restocked[itemID])
	}
}

func TestAdvanceRejectsSkippedAndTerminalStates(t *testing.T) {
	itemID := uuid.New()
	svc, _, items := newTestService(t, itemID)
	companyID := uuid.New()

	order, err := svc.Create(context.Background(), companyID, itemID, 3)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err = svc.Advance(context.Background(), companyID, order.ID, enums.PurchaseOrderStatusFulfilled)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("queued order must not fulfill directly, got %v", err)
	}
	if len(items.restocked) != 0 {
		t.Fatal("rejected transition must not restock")
	}

	if _, err := svc.Advance(context.Background(), companyID, order.ID, enums.PurchaseOrderStatusCancelled); err != nil {
		t.Fatalf("Advance to cancelled error: %v", err)
	}
	_, err = svc.Advance(context.Background(), companyID, order.ID, enums.PurchaseOrderStatusSent)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancelled order must stay cancelled, got %v", err)
	}
}

func TestOpenCountSkipsResolvedOrders(t *testing.T) {
	itemID := uuid.New()
	svc, _, _ := newTestService(t, itemID)
	companyID := uuid.New()

	first, _ := svc.Create(context.Background(), companyID, itemID, 1)
	if _, err := svc.Create(context.Background(), companyID, itemID, 2); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Advance(context.Background(), companyID, first.ID, enums.PurchaseOrderStatusCancelled); err != nil {
		t.Fatalf("Advance error: %v", err)
	}

	count, err := svc.OpenCount(context.Background(), companyID)
	if err != nil {
		t.Fatalf("OpenCount error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 open order, got %d", count)
	}
}
