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
	"fmt"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"
)

// AddCartItem appends a line to the buyer's cart
func (s *LedgerService) AddCartItem(ctx context.Context, params store.CartItemParams) (*models.CartItem, error) {
	if params.UserId == "" || params.ProductId == "" || params.SellerId == "" {
		return nil, fmt.Errorf("%w: buyer_id, product_id and seller_id are required", store.ErrInvalidCartLine)
	}
	if !params.UnitPrice.Equal(params.UnitPrice.Round(models.MoneyScale)) {
		return nil, fmt.Errorf("%w: unit price has more than %d decimal places", store.ErrInvalidCartLine, models.MoneyScale)
	}
	return s.db.AddCartItem(ctx, params)
}

// GetCart returns the buyer's current cart
func (s *LedgerService) GetCart(ctx context.Context, buyerId string) ([]models.CartItem, error) {
	if buyerId == "" {
		return nil, fmt.Errorf("buyer_id is required")
	}
	return s.db.GetCart(ctx, buyerId)
}
