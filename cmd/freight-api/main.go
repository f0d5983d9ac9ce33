// README: Entry point; loads config, wires the rating services and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"freightdesk/internal/config"
	httptransport "freightdesk/internal/http"
	"freightdesk/internal/infra"
	"freightdesk/internal/maps"
	"freightdesk/internal/modules/city"
	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/modules/reconciliation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer func() { _ = redisClient.Close() }()
	var tableCache ratetable.TableCache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable; rate tables will be read from postgres", zap.Error(err))
	} else {
		tableCache = ratetable.NewCache(redisClient, cfg.Redis.TableTTL)
	}

	var router city.Router
	if cfg.Maps.APIKey != "" {
		distances, err := maps.NewDistanceService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		router = distances
	}

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Fatal("firebase init", zap.Error(err))
		}
	} else {
		logger.Warn("FREIGHT_FIREBASE_PROJECT_ID not set; API runs without authentication")
	}

	tableSvc := ratetable.NewService(ratetable.NewStore(dbPool), tableCache, logger.Named("ratetable"))
	citySvc := city.NewService(city.NewStore(dbPool), router, cfg.Maps.Origin, logger.Named("city"))
	pricingSvc := pricing.NewService(pricing.Deps{
		Plans:  tableSvc,
		Cities: citySvc,
		Logger: logger.Named("pricing"),
	})
	deliverySvc := delivery.NewService(delivery.NewStore(dbPool), logger.Named("delivery"))

	sessions := reconciliation.NewManager(reconciliation.Deps{
		NewCalculator: func() reconciliation.Calculator {
			return pricingSvc.WithPlans(ratetable.NewSnapshot(tableSvc))
		},
		Submitter: deliverySvc,
		Records:   deliverySvc,
		Debounce:  cfg.Rating.OpenDebounce,
		Logger:    logger.Named("reconciliation"),
	})
	defer sessions.CloseAll()

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Quoter:        pricingSvc,
		Deliveries:    deliverySvc,
		Sessions:      sessions,
		Tables:        tableSvc,
		Verifier:      verifier,
		OverrideRoles: cfg.Rating.OverrideRoles,
		Logger:        logger,
	})
	server := httptransport.NewServer(cfg.HTTP.Addr, handler, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("freight api listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
