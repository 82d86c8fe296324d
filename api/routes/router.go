package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elizabethadegbaju/crystalims/api/controllers"
	"github.com/elizabethadegbaju/crystalims/api/handlers"
	"github.com/elizabethadegbaju/crystalims/api/middleware"
	"github.com/elizabethadegbaju/crystalims/internal/allocations"
	"github.com/elizabethadegbaju/crystalims/internal/auth"
	"github.com/elizabethadegbaju/crystalims/internal/catalog"
	"github.com/elizabethadegbaju/crystalims/internal/companies"
	"github.com/elizabethadegbaju/crystalims/internal/dashboard"
	"github.com/elizabethadegbaju/crystalims/internal/employees"
	"github.com/elizabethadegbaju/crystalims/internal/inventory"
	"github.com/elizabethadegbaju/crystalims/internal/messaging"
	"github.com/elizabethadegbaju/crystalims/internal/purchasing"
	"github.com/elizabethadegbaju/crystalims/internal/requests"
	"github.com/elizabethadegbaju/crystalims/pkg/auth/session"
	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
	"github.com/elizabethadegbaju/crystalims/pkg/metrics"
	"github.com/elizabethadegbaju/crystalims/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles every domain service the router exposes.
type Services struct {
	Auth        auth.Service
	Companies   companies.Service
	Employees   employees.Service
	Inventory   inventory.Service
	Catalog     catalog.Service
	Allocations allocations.Service
	Requests    requests.Service
	Purchasing  purchasing.Service
	Messaging   messaging.Service
	Dashboard   dashboard.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", handlers.HealthLive(cfg))
		r.Get("/ready", handlers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register-company", controllers.AuthRegisterCompany(svcs.Auth, logg))
		r.Get("/activate/{uid}/{token}", controllers.AuthActivate(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/social/start", controllers.AuthSocialStart(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/social/complete", controllers.AuthSocialComplete(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Post("/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(svcs.Employees, svcs.Allocations, svcs.Messaging, logg))
			r.Put("/", controllers.ProfileUpdate(svcs.Employees, logg))
			r.Post("/avatar", controllers.ProfileAvatarUpload(svcs.Employees, logg))
		})

		r.Get("/company", controllers.CompanyGet(svcs.Companies, logg))

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(svcs.Companies, logg))
			r.Get("/{locationId}", controllers.LocationGet(svcs.Companies, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))
				r.Post("/", controllers.LocationCreate(svcs.Companies, logg))
				r.Put("/{locationId}", controllers.LocationUpdate(svcs.Companies, logg))
				r.Delete("/{locationId}", controllers.LocationDelete(svcs.Companies, logg))
			})
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/", controllers.TeamList(svcs.Employees, logg))
			r.Get("/{userId}", controllers.TeamMemberDetail(svcs.Employees, logg))
			r.With(middleware.RequireManager(logg)).Post("/", controllers.TeamAdd(svcs.Employees, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(svcs.Inventory, logg))
			r.Get("/{itemId}", controllers.ItemGet(svcs.Inventory, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))
				r.Post("/", controllers.ItemCreate(svcs.Inventory, logg))
				r.Put("/{itemId}", controllers.ItemUpdate(svcs.Inventory, logg))
				r.Delete("/{itemId}", controllers.ItemDelete(svcs.Inventory, logg))
				r.Post("/{itemId}/restock", controllers.ItemRestock(svcs.Inventory, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(svcs.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))
				r.Post("/", controllers.CategoryCreate(svcs.Catalog, logg))
				r.Put("/{categoryId}", controllers.CategoryRename(svcs.Catalog, logg))
				r.Delete("/{categoryId}", controllers.CategoryDelete(svcs.Catalog, logg))
			})
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.SupplierList(svcs.Catalog, logg))
			r.Get("/{supplierId}", controllers.SupplierGet(svcs.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))
				r.Post("/", controllers.SupplierCreate(svcs.Catalog, logg))
				r.Put("/{supplierId}", controllers.SupplierUpdate(svcs.Catalog, logg))
				r.Delete("/{supplierId}", controllers.SupplierDelete(svcs.Catalog, logg))
			})
		})

		r.Route("/allocations", func(r chi.Router) {
			r.Post("/", controllers.AllocationCreate(svcs.Allocations, logg))
			r.Get("/mine", controllers.AllocationListMine(svcs.Allocations, logg))
			r.Post("/{allocationId}/check-in", controllers.AllocationCheckIn(svcs.Allocations, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))
				r.Get("/", controllers.AllocationListCompany(svcs.Allocations, logg))
				r.Post("/{allocationId}/decision", controllers.AllocationDecide(svcs.Allocations, logg))
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.RequestCreate(svcs.Requests, logg))
			r.Get("/mine", controllers.RequestListMine(svcs.Requests, logg))
			r.Post("/{requestId}/cancel", controllers.RequestCancel(svcs.Requests, logg))
			r.Post("/{requestId}/return", controllers.RequestReturn(svcs.Requests, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))
				r.Get("/", controllers.RequestListCompany(svcs.Requests, logg))
				r.Post("/{requestId}/fulfill", controllers.RequestFulfill(svcs.Requests, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireManager(logg))
			r.Get("/", controllers.OrderList(svcs.Purchasing, logg))
			r.Post("/", controllers.OrderCreate(svcs.Purchasing, logg))
			r.Get("/{orderId}", controllers.OrderGet(svcs.Purchasing, logg))
			r.Post("/{orderId}/advance", controllers.OrderAdvance(svcs.Purchasing, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.MessageSend(svcs.Messaging, logg))
			r.Get("/inbox", controllers.MessageInbox(svcs.Messaging, logg))
			r.Get("/sent", controllers.MessageSent(svcs.Messaging, logg))
			r.Get("/unread", controllers.MessageUnread(svcs.Messaging, logg))
			r.Get("/{messageId}", controllers.MessageOpen(svcs.Messaging, logg))
		})

		r.With(middleware.RequireManager(logg)).
			Get("/dashboard", controllers.DashboardOverview(svcs.Dashboard, logg))
	})

	return r
}
