package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bankroll/api"
	"bankroll/cache"
	"bankroll/config"
	"bankroll/database"
	"bankroll/events"
	"bankroll/metrics"
	"bankroll/repository"
	"bankroll/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting bankroll engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize balance cache; the engine runs fine without Redis
	var balances *cache.BalanceCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, running without balance cache")
		} else {
			balances = cache.NewBalanceCache(rdb, cfg.BalanceCacheTTL)
			log.Info("Balance cache connected")
		}
	}

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	accountService := service.NewAccountService(uowFactory, balances)
	transactionService := service.NewTransactionService(uowFactory, balances)
	betService := service.NewBetService(uowFactory, balances)
	importService := service.NewImportService(uowFactory, balances)
	recalcService := service.NewRecalcService(uowFactory, balances)

	// Metrics and health endpoints on their own port
	metricsSrv := metrics.StartServer(strconv.Itoa(cfg.MetricsPort), func(ctx context.Context) error {
		return db.Ping(ctx)
	})

	// HTTP API
	handler := api.NewHandler(accountService, transactionService, betService, importService, recalcService)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.WithField("addr", httpSrv.Addr).Info("HTTP API listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server stopped")
		}
	}()

	log.Infof("Engine is running in %s mode", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down HTTP server")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down metrics server")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
