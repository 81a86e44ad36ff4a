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

package checkout

import (
	"context"
	"errors"
	"fmt"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultPaymentMethod = "card"

// Params describes one checkout. Items is the cart snapshot the order is
// frozen from. A nil BillingAddress reuses the shipping address.
type Params struct {
	BuyerId         string
	Items           []models.CartItem
	ShippingAddress models.Address
	BillingAddress  *models.Address
	PaymentMethod   string
}

// Materializer turns cart snapshots into immutable orders.
type Materializer struct {
	store                store.LedgerStore
	defaultPaymentMethod string
}

func NewMaterializer(s store.LedgerStore, defaultPaymentMethod string) *Materializer {
	if defaultPaymentMethod == "" {
		defaultPaymentMethod = DefaultPaymentMethod
	}
	return &Materializer{
		store:                s,
		defaultPaymentMethod: defaultPaymentMethod,
	}
}

// Checkout persists the order, one item per snapshot line, and clears the
// buyer's cart in a single unit of work. Nothing is written if any step fails.
func (m *Materializer) Checkout(ctx context.Context, p Params) (*models.Order, error) {
	if err := m.prepare(&p); err != nil {
		return nil, err
	}

	var order *models.Order
	err := m.store.InTx(ctx, func(ctx context.Context, tx store.LedgerTx) error {
		var err error
		order, err = m.materialize(ctx, tx, p)
		return err
	})
	return m.finish(p.BuyerId, order, err)
}

// CheckoutCart checks out the buyer's current cart. The cart is read, frozen
// into the order and cleared inside one transaction, so concurrent calls for
// the same buyer yield a single order and every later call sees an empty cart.
func (m *Materializer) CheckoutCart(ctx context.Context, buyerId string, shipping models.Address, billing *models.Address, paymentMethod string) (*models.Order, error) {
	if buyerId == "" {
		return nil, fmt.Errorf("%w: buyer id is required", store.ErrInvalidCartLine)
	}
	p := Params{
		BuyerId:         buyerId,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   paymentMethod,
	}

	var order *models.Order
	err := m.store.InTx(ctx, func(ctx context.Context, tx store.LedgerTx) error {
		items, err := tx.GetCartForUpdate(ctx, buyerId)
		if err != nil {
			return err
		}
		p.Items = items
		if err := m.prepare(&p); err != nil {
			return err
		}
		order, err = m.materialize(ctx, tx, p)
		return err
	})
	return m.finish(buyerId, order, err)
}

// prepare validates the snapshot and fills in defaults.
func (m *Materializer) prepare(p *Params) error {
	if p.BuyerId == "" {
		return fmt.Errorf("%w: buyer id is required", store.ErrInvalidCartLine)
	}
	if len(p.Items) == 0 {
		return store.ErrEmptyCart
	}
	for i, line := range p.Items {
		if err := validateLine(line); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	if p.BillingAddress == nil {
		billing := p.ShippingAddress
		p.BillingAddress = &billing
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = m.defaultPaymentMethod
	}
	return nil
}

func (m *Materializer) materialize(ctx context.Context, tx store.LedgerTx, p Params) (*models.Order, error) {
	total := decimal.Zero
	for _, line := range p.Items {
		total = total.Add(line.LineTotal())
	}

	order, err := tx.InsertOrder(ctx, store.NewOrderParams{
		Id:              uuid.New().String(),
		UserId:          p.BuyerId,
		TotalAmount:     total,
		ShippingFee:     decimal.Zero,
		TaxAmount:       decimal.Zero,
		ShippingAddress: p.ShippingAddress,
		BillingAddress:  *p.BillingAddress,
		PaymentMethod:   p.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	order.Items = make([]models.OrderItem, 0, len(p.Items))
	for _, line := range p.Items {
		if _, err := tx.GetSellerBalance(ctx, line.SellerId); err != nil {
			return nil, err
		}

		item, err := tx.InsertOrderItem(ctx, store.NewOrderItemParams{
			Id:              uuid.New().String(),
			OrderId:         order.Id,
			ProductId:       line.ProductId,
			SellerId:        line.SellerId,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.UnitPrice,
		})
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	if err := tx.ClearCart(ctx, p.BuyerId); err != nil {
		return nil, err
	}
	return order, nil
}

func (m *Materializer) finish(buyerId string, order *models.Order, err error) (*models.Order, error) {
	if err != nil {
		if store.IsDomainError(err) {
			zap.L().Warn("Checkout rejected", zap.String("buyer_id", buyerId), zap.Error(err))
			return nil, err
		}
		zap.L().Error("Checkout failed", zap.String("buyer_id", buyerId), zap.Error(err))
		var pe *store.PersistenceError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, store.NewPersistenceError("checkout", err)
	}

	zap.L().Info("Order created",
		zap.String("order_id", order.Id),
		zap.String("buyer_id", buyerId),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("items", len(order.Items)))
	return order, nil
}

func validateLine(line models.CartItem) error {
	if line.SellerId == "" {
		return fmt.Errorf("%w: seller id is required", store.ErrInvalidSellerReference)
	}
	if line.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", store.ErrInvalidCartLine, line.Quantity)
	}
	if line.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative, got %s", store.ErrInvalidCartLine, line.UnitPrice.String())
	}
	if !line.UnitPrice.Equal(line.UnitPrice.Round(models.MoneyScale)) {
		return fmt.Errorf("%w: unit price %s has more than %d decimal places",
			store.ErrInvalidCartLine, line.UnitPrice.String(), models.MoneyScale)
	}
	return nil
}
