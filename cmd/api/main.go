package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/artfolio/marketplace-ledger/internal/adapter"
	"github.com/artfolio/marketplace-ledger/internal/api/middleware"
	"github.com/artfolio/marketplace-ledger/internal/api/server"
	"github.com/artfolio/marketplace-ledger/internal/config"
	"github.com/artfolio/marketplace-ledger/internal/logger"
	"github.com/artfolio/marketplace-ledger/internal/market"
	"github.com/artfolio/marketplace-ledger/internal/messaging"
	"github.com/artfolio/marketplace-ledger/internal/providers/jetstream"
	"github.com/artfolio/marketplace-ledger/internal/registry"
	"github.com/artfolio/marketplace-ledger/internal/store"
	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "marketplace-ledger-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting marketplace ledger API")

	// Connect to database, retrying while it comes up
	var db *gorm.DB
	err = backoff.Retry(func() error {
		var dialErr error
		db, dialErr = gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
		return dialErr
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&schema.Asset{},
		&schema.OperatorApproval{},
		&schema.Listing{},
		&schema.Account{},
		&schema.MarketEvent{},
	); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database schema", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)

	// Connect the event publisher; the journal is the durable record, so a
	// missing broker URL just disables publishing
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		err = backoff.Retry(func() error {
			var pubErr error
			publisher, pubErr = jetstream.NewPublisher(jetstream.Config{
				URL:            cfg.NATS.URL,
				SubjectPrefix:  cfg.NATS.SubjectPrefix,
				MaxReconnects:  cfg.NATS.MaxReconnects,
				ReconnectWait:  cfg.NATS.ReconnectWait,
				ConnectionName: cfg.NATS.ConnectionName,
			}, adapter.NewNatsJetStream(), adapter.NewJSON())
			return pubErr
		}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	} else {
		logger.Warn("NATS URL not configured, events will only be journaled")
	}

	// Assemble the registry and ledger
	assetRegistry := registry.New(dataStore)
	ledger := market.NewLedger(market.Config{
		FeePercent:   cfg.Market.FeePercent,
		FeeRecipient: cfg.Market.FeeRecipientAddress(),
		Custodian:    cfg.Market.Custodian(),
		Registry:     cfg.Market.Registry(),
	}, dataStore, publisher, adapter.NewClock(), adapter.NewIDGenerator())

	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	srv := server.New(serverConfig, assetRegistry, ledger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
