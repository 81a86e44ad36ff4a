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

	"marketplace-ledger-go/internal/models"

	"go.uber.org/zap"
)

func (s *Service) GetTransactionsByOrder(ctx context.Context, orderId string) ([]models.Transaction, error) {
	var rows []transactionRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetTransactionsByOrder), orderId); err != nil {
		zap.L().Error("Failed to query order transactions", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("unable to query order transactions: %w", err)
	}
	return transactionsToModels(rows), nil
}

// GetSellerTransactions returns a page of the seller's ledger, newest first.
func (s *Service) GetSellerTransactions(ctx context.Context, sellerId string, limit, offset int) ([]models.Transaction, error) {
	zap.L().Debug("Getting seller transactions",
		zap.String("seller_id", sellerId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	var rows []transactionRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetSellerTransactions), sellerId, limit, offset); err != nil {
		zap.L().Error("Failed to query seller transactions", zap.String("seller_id", sellerId), zap.Error(err))
		return nil, fmt.Errorf("unable to query seller transactions: %w", err)
	}

	txs := transactionsToModels(rows)
	zap.L().Debug("Retrieved seller transactions", zap.String("seller_id", sellerId), zap.Int("count", len(txs)))
	return txs, nil
}
