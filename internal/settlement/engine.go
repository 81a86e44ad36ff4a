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

package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 30 * time.Second
	referencePrefix = "TXN-"
)

// Mirror receives every committed settlement. Failures never affect the
// settlement itself.
type Mirror interface {
	PublishSettlement(ctx context.Context, order *models.Order, result *models.SettlementResult) error
}

type EngineConfig struct {
	Store                 store.LedgerStore
	DefaultCommissionRate decimal.Decimal
	PlatformAccountId     string
	Timeout               time.Duration
	Mirror                Mirror
}

// Engine divides the money of paid orders between sellers and the platform.
type Engine struct {
	store             store.LedgerStore
	defaultRate       decimal.Decimal
	platformAccountId string
	timeout           time.Duration
	mirror            Mirror
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("settlement engine requires a ledger store")
	}
	if !ValidRate(cfg.DefaultCommissionRate) {
		return nil, fmt.Errorf("default commission rate must be between 0 and 100 with two decimals, got %s",
			cfg.DefaultCommissionRate.String())
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Engine{
		store:             cfg.Store,
		defaultRate:       cfg.DefaultCommissionRate,
		platformAccountId: cfg.PlatformAccountId,
		timeout:           timeout,
		mirror:            cfg.Mirror,
	}, nil
}

// Settle marks a pending order paid and records one Transaction per seller,
// crediting seller balances and the platform aggregate in the same unit of
// work. An empty paymentMethod keeps the method chosen at checkout.
//
// Once started, a settlement is not interrupted by cancellation of ctx; it
// either commits or rolls back within the configured timeout.
func (e *Engine) Settle(ctx context.Context, orderId, paymentMethod string) (*models.SettlementResult, error) {
	if orderId == "" {
		return nil, fmt.Errorf("%w: order id is required", store.ErrOrderNotFound)
	}

	reference := referencePrefix + uuid.New().String()

	workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	var (
		result *models.SettlementResult
		order  *models.Order
	)
	err := e.store.InTx(workCtx, func(ctx context.Context, tx store.LedgerTx) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderId)
		if err != nil {
			return err
		}

		switch order.PaymentStatus {
		case models.PaymentPending:
		case models.PaymentPaid:
			return fmt.Errorf("%w: %s", store.ErrAlreadySettled, orderId)
		default:
			return fmt.Errorf("%w: order %s is %s", store.ErrInvalidPaymentState, orderId, order.PaymentStatus)
		}

		items, err := tx.GetOrderItems(ctx, orderId)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: %s", store.ErrEmptySettlement, orderId)
		}
		order.Items = items

		rates, err := e.commissionRates(ctx, tx, items)
		if err != nil {
			return err
		}

		splits, err := Split(items, rates, e.defaultRate)
		if err != nil {
			return err
		}

		itemsTotal := decimal.Zero
		for _, s := range splits {
			itemsTotal = itemsTotal.Add(s.ItemTotal)
		}
		if !itemsTotal.Equal(order.TotalAmount) {
			return fmt.Errorf("%w: order %s total=%s, items=%s",
				store.ErrLedgerImbalance, orderId, order.TotalAmount.String(), itemsTotal.String())
		}

		txs := make([]models.Transaction, 0, len(splits))
		for _, s := range splits {
			recorded, err := tx.InsertTransaction(ctx, store.NewTransactionParams{
				Id:             uuid.New().String(),
				OrderId:        orderId,
				SellerId:       s.SellerId,
				TotalAmount:    s.ItemTotal,
				SellerAmount:   s.SellerAmount,
				PlatformAmount: s.PlatformAmount,
				CommissionRate: s.CommissionRate,
				Status:         models.TransactionCompleted,
			})
			if err != nil {
				return err
			}
			if err := tx.CreditSeller(ctx, s.SellerId, s.SellerAmount); err != nil {
				return err
			}
			txs = append(txs, *recorded)
		}

		platformTotal := PlatformTotal(splits)
		accountId, err := tx.CreditPlatform(ctx, e.platformAccountId, platformTotal)
		if err != nil {
			return err
		}

		method := paymentMethod
		if method == "" {
			method = order.PaymentMethod
		}
		if err := tx.MarkOrderPaid(ctx, store.MarkPaidParams{
			OrderId:       orderId,
			PaymentMethod: method,
			TransactionId: reference,
		}); err != nil {
			return err
		}

		order.PaymentStatus = models.PaymentPaid
		order.PaymentMethod = method
		order.TransactionId = reference

		result = &models.SettlementResult{
			OrderId:           orderId,
			TransactionRef:    reference,
			PaymentMethod:     method,
			TotalAmount:       order.TotalAmount,
			PlatformTotal:     platformTotal,
			PlatformAccountId: accountId,
			Transactions:      txs,
		}
		return nil
	})
	if err != nil {
		return nil, e.classify(orderId, err)
	}

	zap.L().Info("Order settled",
		zap.String("order_id", orderId),
		zap.String("transaction_ref", reference),
		zap.String("total_amount", result.TotalAmount.String()),
		zap.String("platform_amount", result.PlatformTotal.String()),
		zap.Int("sellers", len(result.Transactions)))

	if e.mirror != nil {
		if err := e.mirror.PublishSettlement(context.WithoutCancel(ctx), order, result); err != nil {
			zap.L().Warn("Failed to mirror settlement",
				zap.String("order_id", orderId),
				zap.String("transaction_ref", reference),
				zap.Error(err))
		}
	}

	return result, nil
}

// commissionRates looks up each distinct seller once. Sellers without a
// configured rate are left out so that Split applies the default.
func (e *Engine) commissionRates(ctx context.Context, tx store.LedgerTx, items []models.OrderItem) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.SellerId] {
			continue
		}
		seen[item.SellerId] = true

		profile, err := tx.GetSellerBalance(ctx, item.SellerId)
		if err != nil {
			return nil, err
		}
		if profile.CommissionRate.Valid {
			rates[item.SellerId] = profile.CommissionRate.Decimal
		}
	}
	return rates, nil
}

// classify keeps input and state errors recognizable and reports everything
// else as a retryable persistence failure.
func (e *Engine) classify(orderId string, err error) error {
	if store.IsDomainError(err) {
		zap.L().Warn("Settlement rejected", zap.String("order_id", orderId), zap.Error(err))
		return err
	}

	zap.L().Error("Settlement failed", zap.String("order_id", orderId), zap.Error(err))
	var pe *store.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return store.NewPersistenceError("settle order "+orderId, err)
}
