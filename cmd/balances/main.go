/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"marketplace-ledger-go/internal/api"
	"marketplace-ledger-go/internal/common"
	"marketplace-ledger-go/internal/config"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalSellers      int
	sellersWithSales  int
	imbalancedSellers int
}

func formatReference(ref string) string {
	if ref == "" {
		return "none"
	}
	if len(ref) > 12 {
		return ref[:12] + "..."
	}
	return ref
}

func printTransaction(tx models.TransactionRecord, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s order %-12s: %12s (seller %s, platform %s, %s%%, %s)\n",
		symbol,
		formatReference(tx.OrderId),
		common.FormatMoney(tx.TotalAmount),
		common.FormatMoney(tx.SellerAmount),
		common.FormatMoney(tx.PlatformAmount),
		tx.CommissionRate.String(),
		tx.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printSellerHeader(user common.UserInfo, earnings *models.SellerEarnings) {
	fmt.Printf("\n┌─ Seller: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Total earnings:  %s\n", common.FormatMoney(earnings.TotalEarnings))
	fmt.Printf("│  Current balance: %s\n", common.FormatMoney(earnings.CurrentBalance))
	common.PrintBoxSeparator(78)
}

func processSeller(ctx context.Context, user common.UserInfo, ledger *api.LedgerService, limit int, reconcile bool) (int, error) {
	earnings, err := ledger.GetSellerEarnings(ctx, user.Id, limit, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to get earnings: %w", err)
	}

	printSellerHeader(user, earnings)
	for i, tx := range earnings.Transactions {
		printTransaction(tx, i == len(earnings.Transactions)-1)
	}

	if reconcile {
		if err := ledger.ReconcileSeller(ctx, user.Id); err != nil {
			return len(earnings.Transactions), err
		}
		fmt.Println("   ✓ balance matches transaction history")
	}

	return len(earnings.Transactions), nil
}

func processSellersAndGenerateReport(ctx context.Context, users []common.UserInfo, ledger *api.LedgerService, limit int, reconcile bool, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalSellers++

		count, err := processSeller(ctx, user, ledger, limit, reconcile)
		if errors.Is(err, store.ErrLedgerImbalance) {
			stats.imbalancedSellers++
			fmt.Printf("   ✗ %v\n", err)
		} else if err != nil {
			logger.Error("Failed to process seller",
				zap.String("seller_id", user.Id),
				zap.String("seller_name", user.Name),
				zap.Error(err))
			continue
		}

		if count > 0 {
			stats.sellersWithSales++
		}
	}

	return stats
}

func printPlatformRevenue(report *models.PlatformRevenueReport) {
	common.PrintHeader("PLATFORM REVENUE", common.DefaultWidth)
	fmt.Printf("Recorded total: %s\n", common.FormatMoney(report.Total))
	fmt.Printf("Ledger total:   %s\n", common.FormatMoney(report.LedgerTotal))
	if report.Reconciled {
		fmt.Println("✓ platform aggregate matches completed transactions")
	} else {
		fmt.Println("✗ platform aggregate does not match completed transactions")
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	sellerFlag := flag.String("seller", "", "Filter by specific seller id (optional)")
	limitFlag := flag.Int("limit", 20, "Number of recent transactions to show per seller")
	reconcileFlag := flag.Bool("reconcile", false, "Check each seller balance against its transactions")
	flag.Parse()

	logger.Info("Starting earnings query")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("driver", cfg.Database.Driver))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	ledger := api.NewLedgerService(dbService)

	users, err := common.InitializeUsers(ctx, dbService, *sellerFlag, models.RoleSeller, logger)
	if err != nil {
		logger.Fatal("Failed to initialize sellers", zap.Error(err))
	}

	common.PrintHeader("SELLER EARNINGS REPORT", common.DefaultWidth)

	stats := processSellersAndGenerateReport(ctx, users, ledger, *limitFlag, *reconcileFlag, logger)

	report, err := ledger.GetPlatformRevenue(ctx)
	if err != nil {
		logger.Error("Failed to get platform revenue", zap.Error(err))
	} else {
		printPlatformRevenue(report)
	}

	summary := fmt.Sprintf("SUMMARY: %d sellers with sales (%d sellers queried, %d imbalanced)",
		stats.sellersWithSales, stats.totalSellers, stats.imbalancedSellers)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Earnings query completed",
		zap.Int("sellers_queried", stats.totalSellers),
		zap.Int("sellers_with_sales", stats.sellersWithSales),
		zap.Int("imbalanced_sellers", stats.imbalancedSellers))
}
