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
	"time"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItem appends a line to the buyer's cart with the unit price frozen.
func (s *Service) AddCartItem(ctx context.Context, params store.CartItemParams) (*models.CartItem, error) {
	if params.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1, got %d", store.ErrInvalidCartLine, params.Quantity)
	}
	if params.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", store.ErrInvalidCartLine)
	}

	item := models.CartItem{
		Id:        uuid.New().String(),
		UserId:    params.UserId,
		ProductId: params.ProductId,
		SellerId:  params.SellerId,
		Quantity:  params.Quantity,
		UnitPrice: params.UnitPrice,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.q(queryInsertCartItem),
		item.Id, item.UserId, item.ProductId, item.SellerId, item.Quantity, toCents(item.UnitPrice), item.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, params.UserId)
		}
		zap.L().Error("Failed to insert cart item", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to insert cart item: %w", err)
	}

	zap.L().Debug("Cart item added",
		zap.String("user_id", item.UserId),
		zap.String("product_id", item.ProductId),
		zap.Int("quantity", item.Quantity))
	return &item, nil
}

func (s *Service) GetCart(ctx context.Context, userId string) ([]models.CartItem, error) {
	var rows []cartItemRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetCart), userId); err != nil {
		zap.L().Error("Failed to query cart", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query cart: %w", err)
	}

	items := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}
