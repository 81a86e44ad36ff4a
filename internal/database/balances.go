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

package database

import (
	"context"
	"fmt"

	"marketplace-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SumSellerAmount returns Σ seller_amount over the seller's completed transactions.
func (s *Service) SumSellerAmount(ctx context.Context, sellerId string) (decimal.Decimal, error) {
	var cents int64
	if err := s.db.GetContext(ctx, &cents, s.q(querySumSellerAmount), sellerId); err != nil {
		zap.L().Error("Failed to sum seller transactions", zap.String("seller_id", sellerId), zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to sum seller transactions: %w", err)
	}
	return fromCents(cents), nil
}

// SumPlatformRevenue returns Σ total_revenue over every platform aggregate.
func (s *Service) SumPlatformRevenue(ctx context.Context) (decimal.Decimal, error) {
	var cents int64
	if err := s.db.GetContext(ctx, &cents, s.q(querySumPlatformRevenue)); err != nil {
		zap.L().Error("Failed to sum platform revenue", zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to sum platform revenue: %w", err)
	}
	return fromCents(cents), nil
}

// SumCompletedPlatformAmount returns Σ platform_amount over completed transactions.
func (s *Service) SumCompletedPlatformAmount(ctx context.Context) (decimal.Decimal, error) {
	var cents int64
	if err := s.db.GetContext(ctx, &cents, s.q(querySumCompletedPlatformAmount)); err != nil {
		zap.L().Error("Failed to sum platform amounts", zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to sum platform amounts: %w", err)
	}
	return fromCents(cents), nil
}

// ReconcileSellerBalance verifies that both running totals match the sum of
// the seller's completed transactions.
func (s *Service) ReconcileSellerBalance(ctx context.Context, sellerId string) error {
	zap.L().Info("Reconciling seller balance", zap.String("seller_id", sellerId))

	balance, err := s.GetSellerBalance(ctx, sellerId)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	calculated, err := s.SumSellerAmount(ctx, sellerId)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	// Exact decimal comparison
	if !balance.TotalEarnings.Equal(calculated) || !balance.CurrentBalance.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("seller_id", sellerId),
			zap.String("total_earnings", balance.TotalEarnings.String()),
			zap.String("current_balance", balance.CurrentBalance.String()),
			zap.String("calculated_balance", calculated.String()),
			zap.String("difference", balance.TotalEarnings.Sub(calculated).String()))
		return fmt.Errorf("%w: seller %s current=%s, calculated=%s",
			store.ErrLedgerImbalance, sellerId, balance.CurrentBalance.String(), calculated.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("seller_id", sellerId),
		zap.String("balance", balance.CurrentBalance.String()))
	return nil
}
