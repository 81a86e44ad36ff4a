package main

import (
	"context"
	"flag"

	"marketplace-ledger-go/internal/common"
	"marketplace-ledger-go/internal/config"

	"go.uber.org/zap"
)

func runInit(ctx context.Context, services *common.Services) {
	zap.L().Info("Initializing database")

	platforms, err := services.DbService.GetPlatformAccounts(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read platform accounts", zap.Error(err))
	}
	if len(platforms) == 0 {
		zap.L().Warn("No platform account exists yet; settlements will fail until an admin is seeded")
	}

	zap.L().Info("Initialization complete", zap.Int("platform_accounts", len(platforms)))
}

func seedDatabase(ctx context.Context, services *common.Services, seedFile string) {
	zap.L().Info("Loading seed configuration", zap.String("file", seedFile))
	seed, err := common.LoadSeedConfig(seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed config", zap.Error(err))
	}

	if err := common.ApplySeed(ctx, services.DbService, seed); err != nil {
		zap.L().Fatal("Failed to apply seed", zap.Error(err))
	}

	sellers, err := services.DbService.GetSellers(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read sellers from database", zap.Error(err))
	}
	for _, seller := range sellers {
		zap.L().Info("Seller ready",
			zap.String("seller_id", seller.UserId),
			zap.String("commission_rate", common.FormatRate(seller.CommissionRate)))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	initFlag := flag.Bool("init", false, "Only run schema migrations")
	seedFlag := flag.String("seed", "seed.yaml", "Seed file with users, sellers and carts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Opening the services applies pending migrations.
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *initFlag {
		runInit(ctx, services)
		return
	}

	seedDatabase(ctx, services, *seedFlag)
	runInit(ctx, services)
}
