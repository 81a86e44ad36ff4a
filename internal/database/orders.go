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

	"go.uber.org/zap"
)

// GetOrder returns the order with its items.
func (s *Service) GetOrder(ctx context.Context, orderId string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, s.q(queryGetOrder), orderId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderId)
		}
		zap.L().Error("Failed to query order", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("unable to query order: %w", err)
	}

	var items []orderItemRow
	if err := s.db.SelectContext(ctx, &items, s.q(queryGetOrderItems), orderId); err != nil {
		zap.L().Error("Failed to query order items", zap.String("order_id", orderId), zap.Error(err))
		return nil, fmt.Errorf("unable to query order items: %w", err)
	}

	order := row.toModel()
	order.Items = orderItemsToModels(items)
	return &order, nil
}

// GetOrdersByBuyer returns the buyer's orders, newest first, without items.
func (s *Service) GetOrdersByBuyer(ctx context.Context, userId string, limit, offset int) ([]models.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetOrdersByBuyer), userId, limit, offset); err != nil {
		zap.L().Error("Failed to query buyer orders", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query buyer orders: %w", err)
	}
	return ordersToModels(rows), nil
}

// GetSettledOrders returns paid orders, oldest first, without items.
func (s *Service) GetSettledOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetSettledOrders), limit, offset); err != nil {
		zap.L().Error("Failed to query settled orders", zap.Error(err))
		return nil, fmt.Errorf("unable to query settled orders: %w", err)
	}
	return ordersToModels(rows), nil
}

// UpdateOrderStatus moves the fulfillment status only if it still equals from.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderId string, from, to models.OrderStatus) error {
	result, err := s.db.ExecContext(ctx, s.q(queryUpdateOrderStatus), string(to), time.Now().UTC(), orderId, string(from))
	if err != nil {
		zap.L().Error("Failed to update order status", zap.String("order_id", orderId), zap.Error(err))
		return store.NewPersistenceError("update order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewPersistenceError("update order status", err)
	}
	if rowsAffected == 0 {
		if _, err := s.GetOrder(ctx, orderId); err != nil {
			return err
		}
		return fmt.Errorf("%w: order %s is no longer %s", store.ErrInvalidStatusTransition, orderId, from)
	}

	zap.L().Info("Order status updated",
		zap.String("order_id", orderId),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}

func ordersToModels(rows []orderRow) []models.Order {
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toModel())
	}
	return orders
}
