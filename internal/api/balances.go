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

package api

import (
	"context"
	"errors"
	"fmt"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"go.uber.org/zap"
)

// GetSellerEarnings returns the seller's running totals and a page of the
// transactions they derive from
func (s *LedgerService) GetSellerEarnings(ctx context.Context, sellerId string, limit, offset int) (*models.SellerEarnings, error) {
	if sellerId == "" {
		return nil, fmt.Errorf("seller_id is required")
	}
	limit, offset = clampPage(limit, offset)

	balance, err := s.db.GetSellerBalance(ctx, sellerId)
	if err != nil {
		if errors.Is(err, store.ErrInvalidSellerReference) {
			return nil, err
		}
		zap.L().Error("Failed to get seller balance", zap.String("seller_id", sellerId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve seller balance")
	}

	transactions, err := s.db.GetSellerTransactions(ctx, sellerId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get seller transactions", zap.String("seller_id", sellerId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve seller transactions")
	}

	records := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		records[i] = models.TransactionRecord{
			Id:             tx.Id,
			OrderId:        tx.OrderId,
			TotalAmount:    tx.TotalAmount,
			SellerAmount:   tx.SellerAmount,
			PlatformAmount: tx.PlatformAmount,
			CommissionRate: tx.CommissionRate,
			Status:         string(tx.Status),
			CreatedAt:      tx.CreatedAt,
		}
	}

	return &models.SellerEarnings{
		SellerId:       sellerId,
		TotalEarnings:  balance.TotalEarnings,
		CurrentBalance: balance.CurrentBalance,
		Transactions:   records,
	}, nil
}

// GetPlatformRevenue compares the running platform aggregates with the sum of
// platform amounts recorded on completed transactions
func (s *LedgerService) GetPlatformRevenue(ctx context.Context) (*models.PlatformRevenueReport, error) {
	total, err := s.db.SumPlatformRevenue(ctx)
	if err != nil {
		zap.L().Error("Failed to sum platform revenue", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve platform revenue")
	}

	ledgerTotal, err := s.db.SumCompletedPlatformAmount(ctx)
	if err != nil {
		zap.L().Error("Failed to sum platform ledger", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve platform ledger total")
	}

	report := &models.PlatformRevenueReport{
		Total:       total,
		LedgerTotal: ledgerTotal,
		Reconciled:  total.Equal(ledgerTotal),
	}
	if !report.Reconciled {
		zap.L().Error("Platform revenue does not match ledger",
			zap.String("total", total.String()),
			zap.String("ledger_total", ledgerTotal.String()))
	}
	return report, nil
}

// ReconcileSeller verifies a seller's balances against their transactions
func (s *LedgerService) ReconcileSeller(ctx context.Context, sellerId string) error {
	if sellerId == "" {
		return fmt.Errorf("seller_id is required")
	}
	return s.db.ReconcileSellerBalance(ctx, sellerId)
}
