package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"loadhitch/internal/app"
	"loadhitch/internal/config"
	"loadhitch/internal/handler"
	"loadhitch/internal/nsq"
	"loadhitch/internal/payfast"
	internalRedis "loadhitch/internal/redis"
	"loadhitch/internal/repository/postgres"
	"loadhitch/internal/routing"
	"loadhitch/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize New Relic")
		} else {
			logger.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Initialize the notification publisher.
	var publisher service.Publisher
	if cfg.NSQ.Enabled {
		producer, err := nsq.NewProducer(cfg.NSQ.Addr, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to nsqd")
		}
		defer producer.Stop()
		publisher = producer
		logger.WithField("addr", cfg.NSQ.Addr).Info("connected to NSQ")
	} else {
		publisher = service.NewLogPublisher(logger)
	}

	// Wire dependencies.
	server, pricingService := wireServer(db, redisClient, nrApp, cfg, logger, publisher)

	// Seed the rate table on first boot.
	if err := pricingService.SeedDefaultTiers(ctx); err != nil {
		logger.WithError(err).Warn("failed to seed default rate tiers")
	}

	// Start server in goroutine.
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// pricing service, which main seeds before serving.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *logrus.Logger,
	publisher service.Publisher,
) (*http.Server, *service.PricingService) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	paymentRepo := postgres.NewPaymentRepository(db)
	loadRepo := postgres.NewLoadRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	tierRepo := postgres.NewRateTierRepository(db)

	// Gateway settings; callback URLs hang off the public base URL.
	processURL, validateURL := payfast.EndpointURLs(cfg.PayFast.Sandbox)
	if cfg.PayFast.ProcessURL != "" {
		processURL = cfg.PayFast.ProcessURL
	}
	if cfg.PayFast.ValidateURL != "" {
		validateURL = cfg.PayFast.ValidateURL
	}

	settings := payfast.Settings{
		MerchantID:       cfg.PayFast.MerchantID,
		MerchantKey:      cfg.PayFast.MerchantKey,
		Passphrase:       cfg.PayFast.Passphrase,
		ProcessURL:       processURL,
		ValidateURL:      validateURL,
		ReturnURL:        cfg.Server.BaseURL + "/v1/payfast/return",
		CancelURL:        cfg.Server.BaseURL + "/v1/payfast/cancel",
		NotifyURL:        cfg.Server.BaseURL + "/v1/payfast/notify",
		RemoteValidation: cfg.PayFast.RemoteValidation,
	}

	// Road-distance provider; quotes fall back to haversine without one.
	var routeSource service.RouteSource
	if cfg.Routing.GoogleMapsAPIKey != "" {
		googleRoutes, err := routing.NewGoogleRoutes(cfg.Routing.GoogleMapsAPIKey)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize routing provider")
		} else {
			routeSource = googleRoutes
		}
	}
	estimator := service.NewDistanceEstimator(routeSource, cfg.Routing.Timeout, logger)

	location, err := time.LoadLocation(cfg.Pricing.Timezone)
	if err != nil {
		logger.WithError(err).Warn("invalid pricing timezone, using UTC")
		location = time.UTC
	}

	// Initialize services.
	notificationService := service.NewNotificationService(publisher, cfg.NSQ.Topic, nil, logger)
	pricingService := service.NewPricingService(tierRepo, cacheStore, estimator, cfg.Pricing.DefaultCategory, nil, location, logger)
	gateway := service.NewSimulatedGateway(logger)
	escrowService := service.NewEscrowService(paymentRepo, loadRepo, customerRepo, lockStore, gateway, notificationService, settings, nil, logger)
	validator := service.NewNotificationValidator(settings, payfast.NewClient(settings, cfg.PayFast.Timeout), logger)
	processor := service.NewNotificationProcessor(escrowService, validator, logger)

	// Initialize handlers.
	paymentHandler := handler.NewPaymentHandler(escrowService, settings.ProcessURL)
	pricingHandler := handler.NewPricingHandler(pricingService)
	payfastHandler := handler.NewPayFastHandler(processor, logger)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		PaymentHandler: paymentHandler,
		PricingHandler: pricingHandler,
		PayFastHandler: payfastHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, pricingService
}
