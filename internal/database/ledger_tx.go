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

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *ledgerTx must satisfy store.LedgerTx.
var _ store.LedgerTx = (*ledgerTx)(nil)

type ledgerTx struct {
	tx      *sqlx.Tx
	dialect dialect
}

// InTx runs fn inside one database transaction and commits only if fn succeeds.
func (s *Service) InTx(ctx context.Context, fn func(ctx context.Context, tx store.LedgerTx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return store.NewPersistenceError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				zap.L().Warn("Failed to roll back transaction", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(ctx, &ledgerTx{tx: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		zap.L().Error("Failed to commit transaction", zap.Error(err))
		return store.NewPersistenceError("commit", err)
	}
	return nil
}

func (t *ledgerTx) q(query string) string {
	return t.tx.Rebind(query)
}

func (t *ledgerTx) InsertOrder(ctx context.Context, params store.NewOrderParams) (*models.Order, error) {
	now := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx, t.q(queryInsertOrder),
		params.Id, params.UserId,
		toCents(params.TotalAmount), toCents(params.ShippingFee), toCents(params.TaxAmount),
		string(models.PaymentPending), string(models.OrderProcessing),
		params.ShippingAddress, params.BillingAddress, params.PaymentMethod,
		now, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, params.UserId)
		}
		return nil, store.NewPersistenceError("insert order", err)
	}

	return &models.Order{
		Id:              params.Id,
		UserId:          params.UserId,
		TotalAmount:     params.TotalAmount,
		ShippingFee:     params.ShippingFee,
		TaxAmount:       params.TaxAmount,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderProcessing,
		ShippingAddress: params.ShippingAddress,
		BillingAddress:  params.BillingAddress,
		PaymentMethod:   params.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (t *ledgerTx) InsertOrderItem(ctx context.Context, params store.NewOrderItemParams) (*models.OrderItem, error) {
	now := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx, t.q(queryInsertOrderItem),
		params.Id, params.OrderId, params.ProductId, params.SellerId,
		params.Quantity, toCents(params.PriceAtPurchase), now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrInvalidSellerReference, params.SellerId)
		}
		return nil, store.NewPersistenceError("insert order item", err)
	}

	return &models.OrderItem{
		Id:              params.Id,
		OrderId:         params.OrderId,
		ProductId:       params.ProductId,
		SellerId:        params.SellerId,
		Quantity:        params.Quantity,
		PriceAtPurchase: params.PriceAtPurchase,
		CreatedAt:       now,
	}, nil
}

// GetOrderForUpdate reads the order row and, where the dialect supports it,
// holds a row lock on it until the transaction ends.
func (t *ledgerTx) GetOrderForUpdate(ctx context.Context, orderId string) (*models.Order, error) {
	var row orderRow
	err := t.tx.GetContext(ctx, &row, t.q(queryGetOrder+t.dialect.lockSuffix), orderId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderId)
		}
		return nil, store.NewPersistenceError("lock order", err)
	}
	order := row.toModel()
	return &order, nil
}

func (t *ledgerTx) GetOrderItems(ctx context.Context, orderId string) ([]models.OrderItem, error) {
	var rows []orderItemRow
	if err := t.tx.SelectContext(ctx, &rows, t.q(queryGetOrderItems), orderId); err != nil {
		return nil, store.NewPersistenceError("load order items", err)
	}
	return orderItemsToModels(rows), nil
}

func (t *ledgerTx) MarkOrderPaid(ctx context.Context, params store.MarkPaidParams) error {
	result, err := t.tx.ExecContext(ctx, t.q(queryMarkOrderPaid),
		params.PaymentMethod, params.TransactionId, time.Now().UTC(), params.OrderId)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrAlreadySettled, params.OrderId)
		}
		return store.NewPersistenceError("mark order paid", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewPersistenceError("mark order paid", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrAlreadySettled, params.OrderId)
	}
	return nil
}

// GetCartForUpdate locks the buyer's users row before reading the cart so
// that checkouts of one cart run one after another. SQLite already holds the
// database write lock for the whole IMMEDIATE transaction.
func (t *ledgerTx) GetCartForUpdate(ctx context.Context, userId string) ([]models.CartItem, error) {
	var id string
	if err := t.tx.GetContext(ctx, &id, t.q(queryLockUser+t.dialect.lockSuffix), userId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
		}
		return nil, store.NewPersistenceError("lock buyer", err)
	}

	var rows []cartItemRow
	if err := t.tx.SelectContext(ctx, &rows, t.q(queryGetCart), userId); err != nil {
		return nil, store.NewPersistenceError("read cart", err)
	}

	items := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

func (t *ledgerTx) ClearCart(ctx context.Context, userId string) error {
	if _, err := t.tx.ExecContext(ctx, t.q(queryClearCart), userId); err != nil {
		return store.NewPersistenceError("clear cart", err)
	}
	return nil
}

func (t *ledgerTx) GetSellerBalance(ctx context.Context, sellerId string) (*models.SellerBalance, error) {
	var row sellerRow
	err := t.tx.GetContext(ctx, &row, t.q(queryGetSellerBalance), sellerId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrInvalidSellerReference, sellerId)
		}
		return nil, store.NewPersistenceError("load seller profile", err)
	}
	balance := row.toModel()
	return &balance, nil
}

// CreditSeller adds amount to both running totals as a delta. A missing
// profile is reported instead of silently dropping the money.
func (t *ledgerTx) CreditSeller(ctx context.Context, sellerId string, amount decimal.Decimal) error {
	cents := toCents(amount)
	result, err := t.tx.ExecContext(ctx, t.q(queryCreditSeller), cents, cents, time.Now().UTC(), sellerId)
	if err != nil {
		return store.NewPersistenceError("credit seller", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewPersistenceError("credit seller", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrInvalidSellerReference, sellerId)
	}
	return nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, params store.NewTransactionParams) (*models.Transaction, error) {
	status := params.Status
	if status == "" {
		status = models.TransactionCompleted
	}

	now := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx, t.q(queryInsertTransaction),
		params.Id, params.OrderId, params.SellerId,
		toCents(params.TotalAmount), toCents(params.SellerAmount), toCents(params.PlatformAmount),
		toBps(params.CommissionRate), string(status), now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: order %s seller %s", store.ErrAlreadySettled, params.OrderId, params.SellerId)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrInvalidSellerReference, params.SellerId)
		}
		return nil, store.NewPersistenceError("insert transaction", err)
	}

	return &models.Transaction{
		Id:             params.Id,
		OrderId:        params.OrderId,
		SellerId:       params.SellerId,
		TotalAmount:    params.TotalAmount,
		SellerAmount:   params.SellerAmount,
		PlatformAmount: params.PlatformAmount,
		CommissionRate: params.CommissionRate,
		Status:         status,
		CreatedAt:      now,
	}, nil
}

func (t *ledgerTx) CreditPlatform(ctx context.Context, accountId string, amount decimal.Decimal) (string, error) {
	if accountId == "" {
		err := t.tx.GetContext(ctx, &accountId, t.q(queryResolvePlatformAccount))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", store.ErrNoPlatformAccount
			}
			return "", store.NewPersistenceError("resolve platform account", err)
		}
	}

	result, err := t.tx.ExecContext(ctx, t.q(queryCreditPlatform), toCents(amount), time.Now().UTC(), accountId)
	if err != nil {
		return "", store.NewPersistenceError("credit platform", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", store.NewPersistenceError("credit platform", err)
	}
	if rowsAffected == 0 {
		return "", fmt.Errorf("%w: %s", store.ErrNoPlatformAccount, accountId)
	}
	return accountId, nil
}
