package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marketplace-ledger-go/internal/common"
	"marketplace-ledger-go/internal/config"
	"marketplace-ledger-go/internal/listener"
	"marketplace-ledger-go/internal/models"

	"go.uber.org/zap"
)

func printMirroredBalances(ctx context.Context, services *common.Services) {
	sellers, err := services.DbService.GetSellers(ctx)
	if err != nil {
		zap.L().Error("Failed to read sellers", zap.Error(err))
		return
	}

	common.PrintHeader("FORMANCE MIRROR CHECK", common.DefaultWidth)
	mismatches := 0
	for i, seller := range sellers {
		mirrored, err := services.Mirror.GetSellerBalance(ctx, seller.UserId)
		if err != nil {
			zap.L().Error("Failed to read mirrored balance", zap.String("seller_id", seller.UserId), zap.Error(err))
			continue
		}
		mark := "✓"
		if !mirrored.Equal(seller.TotalEarnings) {
			mark = "✗"
			mismatches++
		}
		fmt.Printf("%s %s %-36s local %12s  mirror %12s\n",
			common.BoxPrefix(i == len(sellers)-1),
			mark,
			seller.UserId,
			common.FormatMoney(seller.TotalEarnings),
			common.FormatMoney(mirrored))
	}

	platform, err := services.Mirror.GetPlatformBalance(ctx)
	if err != nil {
		zap.L().Error("Failed to read mirrored platform balance", zap.Error(err))
	} else {
		fmt.Printf("\nPlatform revenue (mirror): %s\n", common.FormatMoney(platform))
	}

	if accounts, err := services.Mirror.ListSellerAccounts(ctx, int64(len(sellers))+1); err != nil {
		zap.L().Warn("Failed to list tagged seller accounts", zap.Error(err))
	} else {
		fmt.Printf("Tagged seller accounts (mirror): %d\n", len(accounts))
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d sellers checked, %d mismatched", len(sellers), mismatches), common.DefaultWidth)
}

func tagSellers(ctx context.Context, services *common.Services) {
	sellers, err := services.DbService.GetSellers(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read sellers", zap.Error(err))
	}

	tagged := 0
	for _, seller := range sellers {
		name := ""
		if user, err := services.DbService.GetUserById(ctx, seller.UserId); err == nil {
			name = user.Name
		}
		if err := services.Mirror.TagSellerAccount(ctx, seller, name); err != nil {
			zap.L().Warn("Failed to tag seller account", zap.String("seller_id", seller.UserId), zap.Error(err))
			continue
		}
		tagged++
	}
	fmt.Printf("✓ Tagged %d of %d seller accounts\n", tagged, len(sellers))
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	batchFlag := flag.Int("batch", 100, "Number of settled orders to read per page")
	checkFlag := flag.Bool("check", false, "Compare mirrored seller balances with local totals after replay")
	tagFlag := flag.Bool("tag-sellers", false, "Write seller name and commission rate onto mirrored seller accounts")
	watchFlag := flag.Bool("watch", false, "Keep running and mirror newly settled orders until interrupted")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}
	if !cfg.Formance.Enabled {
		zap.L().Fatal("Formance mirror is disabled; set FORMANCE_ENABLED=true")
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	count, err := services.Mirror.Replay(ctx, services.DbService, *batchFlag)
	if err != nil {
		zap.L().Fatal("Replay failed", zap.Int("orders_replayed", count), zap.Error(err))
	}
	fmt.Printf("✓ Replayed %d settled orders to ledger %s\n", count, cfg.Formance.LedgerName)

	if *tagFlag {
		tagSellers(ctx, services)
	}

	if *checkFlag {
		printMirroredBalances(ctx, services)
	}

	if *watchFlag {
		watch(ctx, cfg, services)
	}
}

func watch(ctx context.Context, cfg *models.Config, services *common.Services) {
	l := listener.NewMirrorListener(listener.MirrorListenerConfig{
		Source:          services.DbService,
		Mirror:          services.Mirror,
		PollingInterval: cfg.Listener.PollingInterval,
		CleanupInterval: cfg.Listener.CleanupInterval,
		Retention:       cfg.Listener.Retention,
		BatchSize:       cfg.Listener.BatchSize,
	})
	if err := l.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start mirror listener", zap.Error(err))
	}

	zap.L().Info("Watching for settled orders, press Ctrl+C to stop",
		zap.Duration("polling_interval", cfg.Listener.PollingInterval))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping mirror listener...")
	l.Stop()
	zap.L().Info("Mirror listener stopped")
}
