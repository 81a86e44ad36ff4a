package common

import (
	"context"
	"log"
	"strings"

	"marketplace-ledger-go/internal/api"
	"marketplace-ledger-go/internal/checkout"
	"marketplace-ledger-go/internal/database"
	"marketplace-ledger-go/internal/formance"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/settlement"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService    *database.Service
	Engine       *settlement.Engine
	Materializer *checkout.Materializer
	Ledger       *api.LedgerService
	Mirror       *formance.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and wires the checkout, settlement
// and reporting services on top of it. The Formance mirror is attached only
// when enabled in cfg.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	services := &Services{DbService: dbService}

	engineCfg := settlement.EngineConfig{
		Store:                 dbService,
		DefaultCommissionRate: cfg.Settlement.DefaultCommissionRate,
		PlatformAccountId:     cfg.Settlement.PlatformAccountId,
		Timeout:               cfg.Settlement.Timeout,
	}

	if cfg.Formance.Enabled {
		zap.L().Info("Formance mirror enabled")
		mirror, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			dbService.Close()
			return nil, err
		}
		services.Mirror = mirror
		engineCfg.Mirror = mirror
	}

	engine, err := settlement.NewEngine(engineCfg)
	if err != nil {
		services.Close()
		return nil, err
	}

	services.Engine = engine
	services.Materializer = checkout.NewMaterializer(dbService, cfg.Settlement.DefaultPaymentMethod)
	services.Ledger = api.NewLedgerService(dbService)

	zap.L().Info("Services initialized",
		zap.String("default_commission_rate", cfg.Settlement.DefaultCommissionRate.String()),
		zap.Duration("settlement_timeout", cfg.Settlement.Timeout))
	return services, nil
}

// InitializeDatabaseOnly initializes just the database service
// Useful for read-only operations like querying balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.Mirror != nil {
		cs.Mirror.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
