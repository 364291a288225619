package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetflow/internal/app"
	"fleetflow/internal/brokersnapshot"
	"fleetflow/internal/config"
	"fleetflow/internal/fmcsa"
	"fleetflow/internal/handler"
	"fleetflow/internal/logging"
	"fleetflow/internal/messaging"
	internalRedis "fleetflow/internal/redis"
	"fleetflow/internal/repository/postgres"
	"fleetflow/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	events := app.NewEventPublisher(cfg.Kafka, logger)
	defer events.Close()
	dispatcher := app.NewNotificationDispatcher(cfg.RabbitMQ, logger)
	defer dispatcher.Close()

	// Wire dependencies.
	server, freightService, err := wireServer(db, redisClient, nrApp, events, dispatcher, cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire server", zap.Error(err))
	}

	// Background matcher.
	matcherCtx, stopMatcher := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		freightService.Run(matcherCtx, cfg.Matching.Interval)
	}()

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	stopMatcher()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// freight service whose matcher main runs in the background.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	eventPublisher messaging.Publisher,
	dispatcher messaging.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) (*http.Server, *service.FreightService, error) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)
	quotaStore := internalRedis.NewQuotaStore(redisClient)

	// Initialize repositories.
	driverRepo := postgres.NewDriverRepository(db)
	loadRepo := postgres.NewLoadRepository(db)
	shipperRepo := postgres.NewShipperAccountRepository(db)
	txManager := postgres.NewTxManager(db)

	// Upstream clients.
	fmcsaClient := fmcsa.NewClient(cfg.FMCSA, cacheStore, quotaStore, logger.Named("fmcsa"))
	snapshotClient := brokersnapshot.NewClient(cfg.BrokerSnapshot)

	pricingTable, err := service.LoadPricingTable(cfg.Pricing.TableFile)
	if err != nil {
		return nil, nil, err
	}

	// Initialize services.
	eventBus := service.NewEventBus(eventPublisher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger)
	carrierService := service.NewCarrierService(fmcsaClient, snapshotClient, logger)
	fraudGuardService := service.NewFraudGuardService(carrierService, notificationService, eventBus, logger)
	quoteService := service.NewQuoteService(service.NewPricingEngine(pricingTable, nil))
	warehouseService := service.NewWarehouseService(nil)
	shipperService := service.NewShipperAccountService(shipperRepo, lockStore, eventBus, logger)
	driverService := service.NewDriverService(locationStore, cacheStore, driverRepo, loadRepo)
	surgeService := service.NewSurgeService(driverRepo, loadRepo)
	matchingService := service.NewMatchingService(
		txManager, locationStore, lockStore, cacheStore, driverRepo, loadRepo,
		notificationService, eventBus, logger.Named("matching"),
		service.MatchingOptions{
			SearchRadiusMiles: cfg.Matching.SearchRadiusMiles,
			OfferTTL:          cfg.Matching.OfferTTL,
		},
	)
	freightService := service.NewFreightService(
		txManager, loadRepo, driverRepo, lockStore, surgeService, matchingService,
		notificationService, eventBus, logger.Named("freight"),
	)
	portalService := service.NewPortalService(quoteService, shipperService, freightService, notificationService, logger)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		CarrierHandler: handler.NewCarrierHandler(carrierService, fraudGuardService),
		QuoteHandler:   handler.NewQuoteHandler(quoteService, warehouseService),
		ShipperHandler: handler.NewShipperHandler(shipperService),
		DriverHandler:  handler.NewDriverHandler(driverService, freightService),
		LoadHandler:    handler.NewLoadHandler(freightService),
		PortalHandler:  handler.NewPortalHandler(portalService, freightService),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         logger.Named("http"),
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, freightService, nil
}
