package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/donat3/ledger-core/internal/adapter"
	"github.com/donat3/ledger-core/internal/api/middleware"
	"github.com/donat3/ledger-core/internal/api/server"
	"github.com/donat3/ledger-core/internal/config"
	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/events"
	"github.com/donat3/ledger-core/internal/logger"
	"github.com/donat3/ledger-core/internal/providers/jetstream"
	"github.com/donat3/ledger-core/internal/store"
	"github.com/donat3/ledger-core/internal/store/schema"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
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
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Donat3 ledger API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Run migrations
	if err := db.AutoMigrate(
		&schema.Account{},
		&schema.RewardToken{},
		&schema.Listing{},
		&schema.Bid{},
		&schema.Campaign{},
		&schema.Donation{},
		&schema.CampaignDonorTotal{},
		&schema.DonorTotal{},
		&schema.Milestone{},
		&schema.CampaignMilestoneClaim{},
		&schema.GlobalMilestoneClaim{},
		&schema.PlatformState{},
		&schema.LedgerEvent{},
	); err != nil {
		logger.FatalCtx(ctx, "Failed to run migrations", zap.Error(err))
	}

	// Initialize adapters and store
	jsonAdapter := adapter.NewJSON()
	dataStore := store.NewPGStore(db, adapter.NewClock(), jsonAdapter)

	// Seed the platform state row and the milestone definition list
	if err := dataStore.InitPlatformState(ctx, cfg.Platform.MinAuctionIncrementBps); err != nil {
		logger.FatalCtx(ctx, "Failed to initialize platform state", zap.Error(err))
	}
	if len(cfg.Platform.Milestones) > 0 {
		seeds := make([]store.MilestoneInput, 0, len(cfg.Platform.Milestones))
		for i, m := range cfg.Platform.Milestones {
			threshold, err := domain.ParseAmount(m.Threshold)
			if err != nil {
				logger.FatalCtx(ctx, "Invalid milestone threshold",
					zap.Int("index", i),
					zap.String("threshold", m.Threshold))
			}
			seeds = append(seeds, store.MilestoneInput{
				Index:     uint32(i),
				Threshold: threshold,
				RewardURI: m.RewardURI,
			})
		}
		if err := dataStore.SeedMilestones(ctx, seeds); err != nil {
			logger.FatalCtx(ctx, "Failed to seed milestones", zap.Error(err))
		}
	}

	// Connect to NATS JetStream for ledger event publishing
	publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))

	// Create the async event dispatcher
	dispatcher := events.NewDispatcher(events.Config{
		PoolSize:       cfg.Events.PoolSize,
		QueueSize:      cfg.Events.QueueSize,
		PublishTimeout: cfg.Events.PublishTimeout,
		MaxRetryWait:   cfg.Events.MaxRetryWait,
	}, publisher)
	defer dispatcher.Close()

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		OwnerAddress: cfg.Platform.OwnerAddress,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, dataStore, dispatcher)

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

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
