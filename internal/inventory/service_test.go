package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/elizabethadegbaju/crystalims/internal/itemlog"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/elizabethadegbaju/crystalims/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepository struct {
	items      map[uuid.UUID]*models.Item
	skus       map[string]bool
	categories map[uuid.UUID]uuid.UUID // category -> company
	listFn     func(filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Item, error)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		items:      map[uuid.UUID]*models.Item{},
		skus:       map[string]bool{},
		categories: map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, item *models.Item) error {
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	f.items[item.ID] = item
	f.skus[item.SKU] = true
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, companyID, itemID uuid.UUID) (*models.Item, error) {
	item, ok := f.items[itemID]
	if !ok || item.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeRepository) SKUExists(_ context.Context, sku string) (bool, error) {
	return f.skus[sku], nil
}

func (f *fakeRepository) List(_ context.Context, _ uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Item, error) {
	if f.listFn != nil {
		return f.listFn(filter, limit, cursor)
	}
	return nil, nil
}

func (f *fakeRepository) Save(_ context.Context, item *models.Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, _, itemID uuid.UUID) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeRepository) AdjustAvailable(_ context.Context, itemID uuid.UUID, delta int) (bool, error) {
	item := f.items[itemID]
	if item.QuantityAvailable+delta < 0 {
		return false, nil
	}
	item.QuantityAvailable += delta
	return true, nil
}

func (f *fakeRepository) Restock(_ context.Context, itemID uuid.UUID, quantity int) error {
	item := f.items[itemID]
	item.QuantityPurchased += quantity
	item.QuantityAvailable += quantity
	return nil
}

func (f *fakeRepository) ItemInCompany(_ context.Context, companyID, itemID uuid.UUID) (bool, error) {
	item, ok := f.items[itemID]
	return ok && item.CompanyID == companyID, nil
}

func (f *fakeRepository) CountByCompany(_ context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	for _, item := range f.items {
		if item.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) SumPrices(_ context.Context, companyID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range f.items {
		if item.CompanyID == companyID {
			total = total.Add(item.Price)
		}
	}
	return total, nil
}

func (f *fakeRepository) ConditionCounts(_ context.Context, companyID uuid.UUID) ([]ConditionCount, error) {
	byCondition := map[enums.Condition]int64{}
	for _, item := range f.items {
		if item.CompanyID == companyID {
			byCondition[item.Condition]++
		}
	}
	var counts []ConditionCount
	for condition, count := range byCondition {
		counts = append(counts, ConditionCount{Condition: condition, Count: count})
	}
	return counts, nil
}

func (f *fakeRepository) ListLowStock(_ context.Context, companyID uuid.UUID, limit int) ([]models.Item, error) {
	var items []models.Item
	for _, item := range f.items {
		if item.CompanyID == companyID && item.QuantityAvailable <= item.ReorderPoint && len(items) < limit {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (f *fakeRepository) CategoryInCompany(_ context.Context, companyID, categoryID uuid.UUID) (bool, error) {
	return f.categories[categoryID] == companyID, nil
}

func (f *fakeRepository) SupplierInCompany(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

func (f *fakeRepository) LocationInCompany(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

type fakeLedger struct {
	additions []decimal.Decimal
}

func (f *fakeLedger) RecordAddition(_ context.Context, _ *gorm.DB, _ uuid.UUID, amount decimal.Decimal, _ time.Time) error {
	f.additions = append(f.additions, amount)
	return nil
}

func (f *fakeLedger) Series(context.Context, uuid.UUID, int) ([]itemlog.PeriodValue, error) {
	return nil, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *fakeRepository, ledger *fakeLedger) Service {
	t.Helper()
	svc, err := NewService(repo, ledger, fakeTxRunner{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func validInput(categoryID uuid.UUID) CreateItemInput {
	return CreateItemInput{
		SKU:               "LT-2024-001",
		Description:       "Dell Latitude 5440",
		Price:             decimal.NewFromInt(850),
		Condition:         enums.ConditionExcellent,
		QuantityPurchased: 4,
		CategoryID:        categoryID,
	}
}

func TestCreateBooksLedgerValue(t *testing.T) {
	repo := newFakeRepository()
	ledger := &fakeLedger{}
	svc := newTestService(t, repo, ledger)

	companyID := uuid.New()
	categoryID := uuid.New()
	repo.categories[categoryID] = companyID

	item, err := svc.Create(context.Background(), companyID, validInput(categoryID))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if item.QuantityAvailable != 4 || item.QuantityPurchased != 4 {
		t.Fatalf("unexpected quantities: %+v", item)
	}
	if len(ledger.additions) != 1 {
		t.Fatalf("expected one ledger addition, got %d", len(ledger.additions))
	}
	if !ledger.additions[0].Equal(decimal.NewFromInt(3400)) {
		t.Fatalf("ledger should book price*quantity, got %s", ledger.additions[0])
	}
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	companyID := uuid.New()
	categoryID := uuid.New()
	repo.categories[categoryID] = companyID

	if _, err := svc.Create(context.Background(), companyID, validInput(categoryID)); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	_, err := svc.Create(context.Background(), companyID, validInput(categoryID))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate sku, got %v", err)
	}
}

func TestCreateRejectsForeignCategory(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	categoryID := uuid.New()
	repo.categories[categoryID] = uuid.New() // belongs to someone else

	_, err := svc.Create(context.Background(), uuid.New(), validInput(categoryID))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateKeepsSKU(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	companyID := uuid.New()
	categoryID := uuid.New()
	repo.categories[categoryID] = companyID

	item, err := svc.Create(context.Background(), companyID, validInput(categoryID))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(context.Background(), companyID, item.ID, UpdateItemInput{
		Description: "Dell Latitude 5440 (refurb)",
		Price:       decimal.NewFromInt(600),
		Condition:   enums.ConditionGood,
		CategoryID:  categoryID,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.SKU != "LT-2024-001" {
		t.Fatalf("sku must stay immutable, got %q", updated.SKU)
	}
	if updated.Condition != enums.ConditionGood {
		t.Fatalf("condition not updated: %s", updated.Condition)
	}
}

func TestRestockBooksValueAndRaisesCounters(t *testing.T) {
	repo := newFakeRepository()
	ledger := &fakeLedger{}
	svc := newTestService(t, repo, ledger)

	companyID := uuid.New()
	categoryID := uuid.New()
	repo.categories[categoryID] = companyID

	item, err := svc.Create(context.Background(), companyID, validInput(categoryID))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	restocked, err := svc.Restock(context.Background(), companyID, item.ID, 6)
	if err != nil {
		t.Fatalf("Restock error: %v", err)
	}
	if restocked.QuantityAvailable != 10 || restocked.QuantityPurchased != 10 {
		t.Fatalf("unexpected counters: %+v", restocked)
	}
	if len(ledger.additions) != 2 || !ledger.additions[1].Equal(decimal.NewFromInt(5100)) {
		t.Fatalf("restock should book 6*850: %v", ledger.additions)
	}
}

func TestAssetsValueSumsUnitPrices(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	companyID := uuid.New()
	repo.items[uuid.New()] = &models.Item{ID: uuid.New(), CompanyID: companyID, Price: decimal.NewFromInt(850)}
	repo.items[uuid.New()] = &models.Item{ID: uuid.New(), CompanyID: companyID, Price: decimal.NewFromInt(120)}
	repo.items[uuid.New()] = &models.Item{ID: uuid.New(), CompanyID: uuid.New(), Price: decimal.NewFromInt(999)}

	total, err := svc.AssetsValue(context.Background(), companyID)
	if err != nil {
		t.Fatalf("AssetsValue error: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(970)) {
		t.Fatalf("expected 970, got %s", total)
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	now := time.Now()
	rows := make([]models.Item, 3)
	for i := range rows {
		rows[i] = models.Item{ID: uuid.New(), CreatedAt: now.Add(-time.Duration(i) * time.Minute)}
	}
	repo.listFn = func(_ ListFilter, limit int, _ *pagination.Cursor) ([]models.Item, error) {
		if limit != 3 { // page size 2 plus lookahead
			t.Fatalf("expected limit 3, got %d", limit)
		}
		return rows, nil
	}

	result, err := svc.List(context.Background(), uuid.New(), ListFilter{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected trimmed page of 2, got %d", len(result.Items))
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor for extra row")
	}

	cursor, err := pagination.ParseCursor(result.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.ID != rows[1].ID {
		t.Fatalf("cursor should reference last returned row")
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, &fakeLedger{})

	_, err := svc.List(context.Background(), uuid.New(), ListFilter{}, pagination.Params{Cursor: "!!not-base64!!"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
