package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elizabethadegbaju/crystalims/api/responses"
	"github.com/elizabethadegbaju/crystalims/internal/allocations"
	"github.com/elizabethadegbaju/crystalims/internal/auth"
	"github.com/elizabethadegbaju/crystalims/internal/catalog"
	"github.com/elizabethadegbaju/crystalims/internal/companies"
	"github.com/elizabethadegbaju/crystalims/internal/dashboard"
	"github.com/elizabethadegbaju/crystalims/internal/employees"
	"github.com/elizabethadegbaju/crystalims/internal/inventory"
	"github.com/elizabethadegbaju/crystalims/internal/messaging"
	pkgauth "github.com/elizabethadegbaju/crystalims/pkg/auth"
	"github.com/elizabethadegbaju/crystalims/pkg/auth/session"
	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
	"github.com/elizabethadegbaju/crystalims/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubAuthService struct{}

func (stubAuthService) RegisterCompany(context.Context, auth.RegisterCompanyInput) (*models.User, error) {
	return &models.User{}, nil
}

func (stubAuthService) Register(context.Context, auth.RegisterInput) (*models.User, error) {
	return &models.User{}, nil
}

func (stubAuthService) Activate(context.Context, uuid.UUID, string) (*auth.Credentials, error) {
	return &auth.Credentials{}, nil
}

func (stubAuthService) Login(context.Context, string, string) (*auth.Credentials, error) {
	return &auth.Credentials{}, nil
}

func (stubAuthService) Refresh(context.Context, string, string) (*auth.TokenPair, error) {
	return &auth.TokenPair{}, nil
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

func (stubAuthService) SocialStart(context.Context, uuid.UUID) (string, error) {
	return uuid.NewString(), nil
}

func (stubAuthService) SocialComplete(context.Context, string, auth.SocialCompleteInput) (*auth.Credentials, error) {
	return &auth.Credentials{}, nil
}

type stubCompanyService struct{}

func (stubCompanyService) Get(context.Context, uuid.UUID) (*models.Company, error) {
	return &models.Company{}, nil
}

func (stubCompanyService) CreateLocation(context.Context, uuid.UUID, companies.LocationInput) (*models.Location, error) {
	return &models.Location{}, nil
}

func (stubCompanyService) GetLocation(context.Context, uuid.UUID, uuid.UUID) (*models.Location, error) {
	return &models.Location{}, nil
}

func (stubCompanyService) ListLocations(context.Context, uuid.UUID) ([]models.Location, error) {
	return nil, nil
}

func (stubCompanyService) UpdateLocation(context.Context, uuid.UUID, uuid.UUID, companies.LocationInput) (*models.Location, error) {
	return &models.Location{}, nil
}

func (stubCompanyService) DeleteLocation(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubEmployeeService struct{}

func (stubEmployeeService) Team(context.Context, uuid.UUID) ([]employees.TeamMember, error) {
	return nil, nil
}

func (stubEmployeeService) TeamCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (stubEmployeeService) Profile(context.Context, uuid.UUID) (*employees.Profile, error) {
	return &employees.Profile{}, nil
}

func (stubEmployeeService) MemberProfile(context.Context, uuid.UUID, uuid.UUID) (*employees.Profile, error) {
	return &employees.Profile{}, nil
}

func (stubEmployeeService) AddEmployee(context.Context, uuid.UUID, uuid.UUID, employees.AddEmployeeInput) (*employees.Profile, error) {
	return &employees.Profile{}, nil
}

func (stubEmployeeService) UpdateProfile(context.Context, uuid.UUID, uuid.UUID, employees.ProfileInput) (*employees.Profile, error) {
	return &employees.Profile{}, nil
}

func (stubEmployeeService) UploadAvatar(context.Context, uuid.UUID, string, io.Reader) (string, error) {
	return "", nil
}

type stubInventoryService struct{}

func (stubInventoryService) Create(context.Context, uuid.UUID, inventory.CreateItemInput) (*models.Item, error) {
	return &models.Item{}, nil
}

func (stubInventoryService) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Item, error) {
	return &models.Item{}, nil
}

func (stubInventoryService) List(context.Context, uuid.UUID, inventory.ListFilter, pagination.Params) (*inventory.ListResult, error) {
	return &inventory.ListResult{}, nil
}

func (stubInventoryService) Update(context.Context, uuid.UUID, uuid.UUID, inventory.UpdateItemInput) (*models.Item, error) {
	return &models.Item{}, nil
}

func (stubInventoryService) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubInventoryService) Restock(context.Context, uuid.UUID, uuid.UUID, int) (*models.Item, error) {
	return &models.Item{}, nil
}

func (stubInventoryService) ItemInCompany(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

func (stubInventoryService) CountItems(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (stubInventoryService) AssetsValue(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubInventoryService) ConditionBreakdown(context.Context, uuid.UUID) ([]inventory.ConditionCount, error) {
	return nil, nil
}

func (stubInventoryService) LowStock(context.Context, uuid.UUID, int) ([]models.Item, error) {
	return nil, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateCategory(context.Context, uuid.UUID, string) (*models.Category, error) {
	return &models.Category{}, nil
}

func (stubCatalogService) ListCategories(context.Context, uuid.UUID) ([]models.Category, error) {
	return nil, nil
}

func (stubCatalogService) RenameCategory(context.Context, uuid.UUID, uuid.UUID, string) (*models.Category, error) {
	return &models.Category{}, nil
}

func (stubCatalogService) DeleteCategory(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubCatalogService) CategoriesWithCounts(context.Context, uuid.UUID) ([]catalog.CategoryCount, error) {
	return nil, nil
}

func (stubCatalogService) CreateSupplier(context.Context, uuid.UUID, catalog.SupplierInput) (*models.Supplier, error) {
	return &models.Supplier{}, nil
}

func (stubCatalogService) GetSupplier(context.Context, uuid.UUID, uuid.UUID) (*models.Supplier, error) {
	return &models.Supplier{}, nil
}

func (stubCatalogService) ListSuppliers(context.Context, uuid.UUID) ([]models.Supplier, error) {
	return nil, nil
}

func (stubCatalogService) UpdateSupplier(context.Context, uuid.UUID, uuid.UUID, catalog.SupplierInput) (*models.Supplier, error) {
	return &models.Supplier{}, nil
}

func (stubCatalogService) DeleteSupplier(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubAllocationService struct{}

func (stubAllocationService) Create(context.Context, uuid.UUID, uuid.UUID, allocations.CreateAllocationInput) (*allocations.View, error) {
	return &allocations.View{}, nil
}

func (stubAllocationService) ListMine(context.Context, uuid.UUID) ([]allocations.View, error) {
	return nil, nil
}

func (stubAllocationService) ListCompany(context.Context, uuid.UUID) ([]allocations.View, error) {
	return nil, nil
}

func (stubAllocationService) Decide(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, bool) (*allocations.View, error) {
	return &allocations.View{}, nil
}

func (stubAllocationService) CheckIn(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, bool) (*allocations.View, error) {
	return &allocations.View{}, nil
}

func (stubAllocationService) PendingItemCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubAllocationService) ApprovedCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubAllocationService) ActiveCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (stubAllocationService) MostRequested(context.Context, uuid.UUID, int) ([]allocations.ItemDemand, error) {
	return nil, nil
}

type stubRequestService struct{}

func (stubRequestService) Create(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (stubRequestService) Cancel(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (stubRequestService) Fulfill(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (stubRequestService) MarkReturned(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, bool) (*models.ItemReturn, error) {
	return &models.ItemReturn{}, nil
}

func (stubRequestService) ListMine(context.Context, uuid.UUID) ([]models.ItemRequest, error) {
	return nil, nil
}

func (stubRequestService) ListCompany(context.Context, uuid.UUID) ([]models.ItemRequest, error) {
	return nil, nil
}

func (stubRequestService) PendingCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type stubPurchasingService struct{}

func (stubPurchasingService) Create(context.Context, uuid.UUID, uuid.UUID, int) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{}, nil
}

func (stubPurchasingService) Get(context.Context, uuid.UUID, uuid.UUID) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{}, nil
}

func (stubPurchasingService) List(context.Context, uuid.UUID) ([]models.PurchaseOrder, error) {
	return nil, nil
}

func (stubPurchasingService) Advance(context.Context, uuid.UUID, uuid.UUID, enums.PurchaseOrderStatus) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{}, nil
}

func (stubPurchasingService) OpenCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type stubMessagingService struct{}

func (stubMessagingService) SendPeer(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, string) (*models.Message, error) {
	return &models.Message{}, nil
}

func (stubMessagingService) NotifySystem(context.Context, uuid.UUID, string) error { return nil }

func (stubMessagingService) Inbox(context.Context, uuid.UUID) ([]models.Message, error) {
	return nil, nil
}

func (stubMessagingService) Sent(context.Context, uuid.UUID) ([]models.Message, error) {
	return nil, nil
}

func (stubMessagingService) Open(context.Context, uuid.UUID, uuid.UUID) (*models.Message, error) {
	return &models.Message{}, nil
}

func (stubMessagingService) Unread(context.Context, uuid.UUID) (messaging.UnreadCounts, error) {
	return messaging.UnreadCounts{}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Overview(context.Context, uuid.UUID) (*dashboard.Overview, error) {
	return &dashboard.Overview{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis; rate limit policies are disabled in tests
		stubSessionChecker{},
		nil, // metrics
		Services{
			Auth:        stubAuthService{},
			Companies:   stubCompanyService{},
			Employees:   stubEmployeeService{},
			Inventory:   stubInventoryService{},
			Catalog:     stubCatalogService{},
			Allocations: stubAllocationService{},
			Requests:    stubRequestService{},
			Purchasing:  stubPurchasingService{},
			Messaging:   stubMessagingService{},
			Dashboard:   stubDashboardService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, roles ...enums.MemberRole) string {
	t.Helper()
	companyID := uuid.New()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:    uuid.New(),
		CompanyID: &companyID,
		Roles:     roles,
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestActivationLinkIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	path := "/api/v1/auth/activate/" + uuid.NewString() + "/some-token"
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSocialStartIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	body := strings.NewReader(`{"company_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/social/start", body)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("social start must not require a session, got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestMemberCanListItems(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDashboardNarrowsScopeForMembers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	member := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for member got %d", resp.Code)
	}
	if got := resp.Header().Get("Location"); got != responses.ProfilePath {
		t.Fatalf("expected redirect to %s got %s", responses.ProfilePath, got)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestItemCreateIsManagerOnly(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for member item create got %d", resp.Code)
	}
}
