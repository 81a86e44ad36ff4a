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

// GetOrderDetail returns an order with its items and settlement rows
func (s *LedgerService) GetOrderDetail(ctx context.Context, orderId string) (*models.OrderDetail, error) {
	if orderId == "" {
		return nil, fmt.Errorf("order_id is required")
	}

	order, err := s.db.GetOrder(ctx, orderId)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return nil, err
		}
		zap.L().Error("Failed to get order", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve order")
	}

	transactions, err := s.db.GetTransactionsByOrder(ctx, orderId)
	if err != nil {
		zap.L().Error("Failed to get order transactions", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve order transactions")
	}

	return &models.OrderDetail{
		Order:        *order,
		Transactions: transactions,
	}, nil
}

// GetBuyerOrders returns a page of the buyer's orders, newest first
func (s *LedgerService) GetBuyerOrders(ctx context.Context, buyerId string, limit, offset int) ([]models.Order, error) {
	if buyerId == "" {
		return nil, fmt.Errorf("buyer_id is required")
	}
	limit, offset = clampPage(limit, offset)

	orders, err := s.db.GetOrdersByBuyer(ctx, buyerId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get buyer orders", zap.String("buyer_id", buyerId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve orders")
	}
	return orders, nil
}

// UpdateOrderStatus advances the fulfillment status of an order along the
// allowed transitions
func (s *LedgerService) UpdateOrderStatus(ctx context.Context, orderId string, next models.OrderStatus) (*models.Order, error) {
	if orderId == "" {
		return nil, fmt.Errorf("order_id is required")
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", store.ErrInvalidStatusTransition, next)
	}

	order, err := s.db.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	if !order.OrderStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", store.ErrInvalidStatusTransition, order.OrderStatus, next)
	}

	if err := s.db.UpdateOrderStatus(ctx, orderId, order.OrderStatus, next); err != nil {
		return nil, err
	}

	return s.db.GetOrder(ctx, orderId)
}
