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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpsertSeller creates a seller profile or updates its commission rate.
// Running totals are never touched here.
func (s *Service) UpsertSeller(ctx context.Context, userId string, commissionRate decimal.NullDecimal) error {
	if commissionRate.Valid {
		if commissionRate.Decimal.IsNegative() || commissionRate.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("commission rate must be between 0 and 100, got %s", commissionRate.Decimal.String())
		}
	}

	_, err := s.db.ExecContext(ctx, s.q(queryUpsertSeller), userId, toNullBps(commissionRate), time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
		}
		zap.L().Error("Failed to upsert seller profile", zap.String("seller_id", userId), zap.Error(err))
		return fmt.Errorf("unable to upsert seller profile: %w", err)
	}

	zap.L().Info("Seller profile saved",
		zap.String("seller_id", userId),
		zap.String("commission_rate", nullRateString(commissionRate)))
	return nil
}

func (s *Service) GetSellerBalance(ctx context.Context, sellerId string) (*models.SellerBalance, error) {
	var row sellerRow
	err := s.db.GetContext(ctx, &row, s.q(queryGetSellerBalance), sellerId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrInvalidSellerReference, sellerId)
		}
		zap.L().Error("Failed to get seller balance", zap.String("seller_id", sellerId), zap.Error(err))
		return nil, fmt.Errorf("failed to get seller balance: %w", err)
	}

	balance := row.toModel()
	zap.L().Debug("Retrieved seller balance",
		zap.String("seller_id", sellerId),
		zap.String("total_earnings", balance.TotalEarnings.String()),
		zap.String("current_balance", balance.CurrentBalance.String()))
	return &balance, nil
}

func (s *Service) GetSellers(ctx context.Context) ([]models.SellerBalance, error) {
	var rows []sellerRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetSellers)); err != nil {
		zap.L().Error("Failed to query sellers", zap.Error(err))
		return nil, fmt.Errorf("unable to query sellers: %w", err)
	}

	sellers := make([]models.SellerBalance, 0, len(rows))
	for _, row := range rows {
		sellers = append(sellers, row.toModel())
	}
	return sellers, nil
}

// CreatePlatformAccount creates the revenue aggregate owned by an admin user.
// An existing aggregate for the same admin is returned unchanged.
func (s *Service) CreatePlatformAccount(ctx context.Context, adminUserId string) (*models.PlatformRevenue, error) {
	var existing platformRow
	err := s.db.GetContext(ctx, &existing, s.q(queryGetPlatformAccountByAdmin), adminUserId)
	if err == nil {
		account := existing.toModel()
		return &account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unable to query platform account: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, s.q(queryInsertPlatformAccount), id, adminUserId, now, now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, adminUserId)
		}
		zap.L().Error("Failed to create platform account", zap.String("admin_user_id", adminUserId), zap.Error(err))
		return nil, fmt.Errorf("unable to create platform account: %w", err)
	}

	zap.L().Info("Platform revenue account created", zap.String("id", id), zap.String("admin_user_id", adminUserId))
	return &models.PlatformRevenue{
		Id:           id,
		AdminUserId:  adminUserId,
		TotalRevenue: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *Service) GetPlatformAccounts(ctx context.Context) ([]models.PlatformRevenue, error) {
	var rows []platformRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetPlatformAccounts)); err != nil {
		zap.L().Error("Failed to query platform accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query platform accounts: %w", err)
	}

	accounts := make([]models.PlatformRevenue, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toModel())
	}
	return accounts, nil
}

func nullRateString(rate decimal.NullDecimal) string {
	if !rate.Valid {
		return "default"
	}
	return rate.Decimal.StringFixed(models.RateScale)
}
