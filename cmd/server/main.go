package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/config"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
	"github.com/kdiomande/stockroom/internal/repository/mongodb"
	"github.com/kdiomande/stockroom/internal/repository/sheetstore"
	"github.com/kdiomande/stockroom/internal/scheduler"
	"github.com/kdiomande/stockroom/internal/server/handlers"
	"github.com/kdiomande/stockroom/internal/server/router"
	billingsvc "github.com/kdiomande/stockroom/internal/service/billing"
	catalogsvc "github.com/kdiomande/stockroom/internal/service/catalog"
	importingsvc "github.com/kdiomande/stockroom/internal/service/importing"
	inventorysvc "github.com/kdiomande/stockroom/internal/service/inventory"
	reportingsvc "github.com/kdiomande/stockroom/internal/service/reporting"
	"github.com/kdiomande/stockroom/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var gw gateway.Client
	switch cfg.Gateway.Driver {
	case config.DriverSheets:
		store, err := sheetstore.NewSheetStore(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheetstore"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets gateway", zap.Error(err))
		}
		gw = store
	default:
		gw = gateway.NewScriptClient(cfg.Gateway, baseLogger.Named("repo.gateway"))
	}

	// The MongoDB mirror is optional; without it the catalog reads straight
	// from the gateway and import audits are not persisted.
	var cache mongodb.CacheRepository
	var audit importingsvc.AuditSink
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		cache = mongoRepo
		audit = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI not set, cache mirror and import audit log disabled")
	}

	cacheTTL := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	catalogSvc := catalogsvc.NewService(gw, cache, cacheTTL, baseLogger.Named("svc.catalog"))
	inventorySvc := inventorysvc.NewService(gw, baseLogger.Named("svc.inventory"))
	billingSvc := billingsvc.NewService(gw, baseLogger.Named("svc.billing"))
	reportingSvc := reportingsvc.NewService(gw, cfg.Report.LowStockThreshold, baseLogger.Named("svc.reporting"))

	orchestrator := importingsvc.NewOrchestrator(gw, catalogSvc, audit, importingsvc.Options{
		MaxFileBytes:      int64(cfg.Import.MaxFileMB) * 1024 * 1024,
		CommitConcurrency: cfg.Import.CommitConcurrency,
		SessionTTL:        time.Duration(cfg.Import.SessionTTLMinutes) * time.Minute,
	}, baseLogger.Named("svc.importing"))

	engine := router.New(router.Handlers{
		Products:  handlers.NewProductHandler(inventorySvc, baseLogger.Named("handlers.products")),
		Masters:   handlers.NewMasterHandler(catalogSvc, baseLogger.Named("handlers.masters")),
		Invoices:  handlers.NewInvoiceHandler(billingSvc, baseLogger.Named("handlers.invoices")),
		Imports:   handlers.NewImportHandler(orchestrator, baseLogger.Named("handlers.imports")),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, baseLogger.Named("handlers.dashboard")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, catalogSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
