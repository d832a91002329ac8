package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/restaurant-ops-backend/config"
	"github.com/ikkim/restaurant-ops-backend/internal/app/controller"
	"github.com/ikkim/restaurant-ops-backend/internal/app/repository"
	"github.com/ikkim/restaurant-ops-backend/internal/app/service"
	"github.com/ikkim/restaurant-ops-backend/internal/db"
	"github.com/ikkim/restaurant-ops-backend/internal/middleware"
	"github.com/ikkim/restaurant-ops-backend/internal/router"
	"github.com/ikkim/restaurant-ops-backend/internal/scheduler"
	"github.com/ikkim/restaurant-ops-backend/internal/storage"
	ws "github.com/ikkim/restaurant-ops-backend/internal/websocket"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"github.com/ikkim/restaurant-ops-backend/pkg/redis"
	"github.com/ikkim/restaurant-ops-backend/pkg/secure"
	"github.com/ikkim/restaurant-ops-backend/pkg/storeapi"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Server.LogLevel
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting restaurant ops server", map[string]interface{}{
		"environment":  cfg.Server.Environment,
		"port":         cfg.Server.Port,
		"log_level":    logLevel,
		"gateway_mode": cfg.Wizard.GatewayMode,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Idempotency claims live in Redis; a single instance can run without it
	var claims redis.ClaimStore
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, using in-process idempotency claims", map[string]interface{}{
			"error": err.Error(),
		})
		claims = redis.NewMemoryClaims()
	} else {
		claims = redis.NewRedisClaims(redis.GetClient())
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	sealer, err := secure.NewSealer(cfg.Security.SealingKey)
	if err != nil {
		logger.Fatal("Failed to initialize secret sealer", err)
	}

	// Initialize repositories and services
	storeRepo := repository.NewStoreRepository(db.GetDB())
	storeService := service.NewStoreService(db.GetDB(), storeRepo, claims, sealer)

	gateways, err := newGatewayFactory(cfg, storeService)
	if err != nil {
		logger.Fatal("Failed to configure store gateway", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	wizardService := service.NewWizardService(service.WizardServiceOptions{
		Gateways:       gateways,
		Publisher:      hub,
		SessionTTL:     cfg.Wizard.SessionTTL,
		SubmitTimeout:  cfg.Wizard.SubmitTimeout,
		WebhookBaseURL: cfg.Wizard.WebhookBaseURL,
	})
	hub.SetRefreshHandler(wizardService.PublishSnapshot)

	connectionService := service.NewConnectionService(
		cfg.Integrations.LineAPIBaseURL,
		cfg.Integrations.GoogleTokenURL,
		cfg.Integrations.RequestTimeout,
	)
	summaryService := service.NewSummaryService(newSummaryArchive(cfg))

	// Initialize controllers
	wizardController := controller.NewWizardController(wizardService, connectionService, summaryService)
	wizardSocketController := controller.NewWizardSocketController(wizardService, hub, cfg.CORS.AllowedOrigins)
	storeController := controller.NewStoreController(storeService)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		wizardController,
		wizardSocketController,
		storeController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	sweeper := scheduler.NewSessionSweeper(wizardService, scheduler.DefaultSweepSpec)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start session sweeper", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	// in-flight submissions get the full submit timeout to finish
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Wizard.SubmitTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	sweeper.Stop()
	hub.Stop()

	logger.Info("Server stopped successfully")
}

// newGatewayFactory picks where wizard submissions are written. Local mode
// registers stores in this process; remote mode posts them to another server.
func newGatewayFactory(cfg *config.Config, stores service.StoreService) (service.GatewayFactory, error) {
	if cfg.Wizard.GatewayMode != config.GatewayRemote {
		return func(ownerID uint) wizard.Gateway {
			return service.NewLocalGateway(stores, ownerID)
		}, nil
	}

	client, err := storeapi.NewClient(storeapi.Config{
		BaseURL: cfg.Wizard.GatewayURL,
		Token:   cfg.Wizard.GatewayToken,
		Timeout: cfg.Wizard.SubmitTimeout,
	})
	if err != nil {
		return nil, err
	}
	return func(uint) wizard.Gateway { return client }, nil
}

// newSummaryArchive returns nil when no object storage is configured.
func newSummaryArchive(cfg *config.Config) storage.Archive {
	if cfg.S3.AccessKeyID == "" && cfg.S3.Endpoint == "" {
		logger.Info("Summary archiving disabled (no S3 credentials)")
		return nil
	}
	return storage.NewS3Storage(storage.S3Options{
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Endpoint:        cfg.S3.Endpoint,
		LinkExpiry:      cfg.S3.LinkExpiry,
	})
}
