package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/elizabethadegbaju/crystalims/api/routes"
	"github.com/elizabethadegbaju/crystalims/internal/allocations"
	"github.com/elizabethadegbaju/crystalims/internal/auth"
	"github.com/elizabethadegbaju/crystalims/internal/authz"
	"github.com/elizabethadegbaju/crystalims/internal/catalog"
	"github.com/elizabethadegbaju/crystalims/internal/companies"
	"github.com/elizabethadegbaju/crystalims/internal/dashboard"
	"github.com/elizabethadegbaju/crystalims/internal/employees"
	"github.com/elizabethadegbaju/crystalims/internal/inventory"
	"github.com/elizabethadegbaju/crystalims/internal/itemlog"
	"github.com/elizabethadegbaju/crystalims/internal/messaging"
	"github.com/elizabethadegbaju/crystalims/internal/purchasing"
	"github.com/elizabethadegbaju/crystalims/internal/requests"
	"github.com/elizabethadegbaju/crystalims/internal/users"
	"github.com/elizabethadegbaju/crystalims/pkg/activation"
	"github.com/elizabethadegbaju/crystalims/pkg/auth/session"
	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/env"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
	"github.com/elizabethadegbaju/crystalims/pkg/mailer"
	"github.com/elizabethadegbaju/crystalims/pkg/metrics"
	"github.com/elizabethadegbaju/crystalims/pkg/migrate"
	"github.com/elizabethadegbaju/crystalims/pkg/redis"
	"github.com/elizabethadegbaju/crystalims/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	mail, err := mailer.NewSMTP(cfg.SMTP)
	if err != nil {
		logg.Warn(ctx, "smtp not configured, logging mail instead")
		mail = mailer.NewLog(logg)
	}

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	tokens, err := activation.NewGenerator(cfg.Activation)
	if err != nil {
		logg.Error(ctx, "failed to create activation generator", err)
		os.Exit(1)
	}

	svcs, err := buildServices(dbClient, redisClient, gcsClient, mail, sessions, tokens, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	addr := ":" + env.Get("PORT", cfg.App.Port)

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessions, httpMetrics, svcs),
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		startCtx := logg.WithFields(runCtx, map[string]any{
			"env":  cfg.App.Env,
			"addr": addr,
		})
		logg.Info(startCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			stop()
		}
	}()

	<-runCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
}

func buildServices(
	dbClient *db.Client,
	redisClient *redis.Client,
	gcsClient *gcs.Client,
	mail mailer.Mailer,
	sessions *session.Manager,
	tokens *activation.Generator,
	cfg *config.Config,
	logg *logger.Logger,
) (routes.Services, error) {
	gdb := dbClient.DB()

	userRepo := users.NewRepository(gdb)
	companyRepo := companies.NewRepository(gdb)
	employeeRepo := employees.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)
	catalogRepo := catalog.NewRepository(gdb)
	allocationRepo := allocations.NewRepository(gdb)
	requestRepo := requests.NewRepository(gdb)
	purchasingRepo := purchasing.NewRepository(gdb)
	messagingRepo := messaging.NewRepository(gdb)
	itemlogRepo := itemlog.NewRepository(gdb)
	authzRepo := authz.NewRepository(gdb)

	ledger, err := itemlog.NewService(itemlogRepo)
	if err != nil {
		return routes.Services{}, err
	}
	inventorySvc, err := inventory.NewService(inventoryRepo, ledger, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	companySvc, err := companies.NewService(companyRepo)
	if err != nil {
		return routes.Services{}, err
	}
	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}
	allocationSvc, err := allocations.NewService(allocationRepo, inventorySvc)
	if err != nil {
		return routes.Services{}, err
	}
	messagingSvc, err := messaging.NewService(messagingRepo)
	if err != nil {
		return routes.Services{}, err
	}
	requestSvc, err := requests.NewService(requestRepo, inventoryRepo, messagingSvc, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}
	purchasingSvc, err := purchasing.NewService(purchasingRepo, inventorySvc)
	if err != nil {
		return routes.Services{}, err
	}
	employeeSvc, err := employees.NewService(
		employeeRepo, userRepo, companyRepo, inventoryRepo,
		gcsClient, mail, tokens, dbClient, cfg.Password, cfg.App.BaseURL,
	)
	if err != nil {
		return routes.Services{}, err
	}
	dashboardSvc, err := dashboard.NewService(
		inventorySvc, employeeSvc, allocationSvc, requestSvc, purchasingSvc, catalogSvc, ledger,
	)
	if err != nil {
		return routes.Services{}, err
	}
	authSvc, err := auth.NewService(
		userRepo, companyRepo, employeeRepo, authzRepo,
		sessions, tokens, mail, gcsClient, redisClient,
		dbClient, cfg.JWT, cfg.Password, cfg.App.BaseURL,
	)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:        authSvc,
		Companies:   companySvc,
		Employees:   employeeSvc,
		Inventory:   inventorySvc,
		Catalog:     catalogSvc,
		Allocations: allocationSvc,
		Requests:    requestSvc,
		Purchasing:  purchasingSvc,
		Messaging:   messagingSvc,
		Dashboard:   dashboardSvc,
	}, nil
}
