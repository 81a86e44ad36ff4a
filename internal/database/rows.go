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
	"database/sql"
	"time"

	"marketplace-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Amounts are persisted as integer minor units so that SUM and the
// balance deltas stay exact on every dialect.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(models.MoneyScale).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -models.MoneyScale)
}

// Commission percentages are persisted as basis points (10.50% -> 1050).
func toBps(rate decimal.Decimal) int64 {
	return rate.Shift(models.RateScale).Round(0).IntPart()
}

func fromBps(bps int64) decimal.Decimal {
	return decimal.New(bps, -models.RateScale)
}

func toNullBps(rate decimal.NullDecimal) sql.NullInt64 {
	if !rate.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toBps(rate.Decimal), Valid: true}
}

type userRow struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) toModel() models.User {
	return models.User{
		Id:        r.Id,
		Name:      r.Name,
		Email:     r.Email,
		Role:      models.UserRole(r.Role),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type sellerRow struct {
	UserId            string        `db:"user_id"`
	CommissionRateBps sql.NullInt64 `db:"commission_rate_bps"`
	TotalEarnings     int64         `db:"total_earnings"`
	CurrentBalance    int64         `db:"current_balance"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

func (r sellerRow) toModel() models.SellerBalance {
	balance := models.SellerBalance{
		UserId:         r.UserId,
		TotalEarnings:  fromCents(r.TotalEarnings),
		CurrentBalance: fromCents(r.CurrentBalance),
		UpdatedAt:      r.UpdatedAt,
	}
	if r.CommissionRateBps.Valid {
		balance.CommissionRate = decimal.NewNullDecimal(fromBps(r.CommissionRateBps.Int64))
	}
	return balance
}

type platformRow struct {
	Id           string    `db:"id"`
	AdminUserId  string    `db:"admin_user_id"`
	TotalRevenue int64     `db:"total_revenue"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r platformRow) toModel() models.PlatformRevenue {
	return models.PlatformRevenue{
		Id:           r.Id,
		AdminUserId:  r.AdminUserId,
		TotalRevenue: fromCents(r.TotalRevenue),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type cartItemRow struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	ProductId string    `db:"product_id"`
	SellerId  string    `db:"seller_id"`
	Quantity  int       `db:"quantity"`
	UnitPrice int64     `db:"unit_price"`
	CreatedAt time.Time `db:"created_at"`
}

func (r cartItemRow) toModel() models.CartItem {
	return models.CartItem{
		Id:        r.Id,
		UserId:    r.UserId,
		ProductId: r.ProductId,
		SellerId:  r.SellerId,
		Quantity:  r.Quantity,
		UnitPrice: fromCents(r.UnitPrice),
		CreatedAt: r.CreatedAt,
	}
}

type orderRow struct {
	Id              string         `db:"id"`
	UserId          string         `db:"user_id"`
	TotalAmount     int64          `db:"total_amount"`
	ShippingFee     int64          `db:"shipping_fee"`
	TaxAmount       int64          `db:"tax_amount"`
	PaymentStatus   string         `db:"payment_status"`
	OrderStatus     string         `db:"order_status"`
	ShippingAddress models.Address `db:"shipping_address"`
	BillingAddress  models.Address `db:"billing_address"`
	PaymentMethod   string         `db:"payment_method"`
	TransactionId   sql.NullString `db:"transaction_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r orderRow) toModel() models.Order {
	return models.Order{
		Id:              r.Id,
		UserId:          r.UserId,
		TotalAmount:     fromCents(r.TotalAmount),
		ShippingFee:     fromCents(r.ShippingFee),
		TaxAmount:       fromCents(r.TaxAmount),
		PaymentStatus:   models.PaymentStatus(r.PaymentStatus),
		OrderStatus:     models.OrderStatus(r.OrderStatus),
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		PaymentMethod:   r.PaymentMethod,
		TransactionId:   r.TransactionId.String,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type orderItemRow struct {
	Id              string    `db:"id"`
	OrderId         string    `db:"order_id"`
	ProductId       string    `db:"product_id"`
	SellerId        string    `db:"seller_id"`
	Quantity        int       `db:"quantity"`
	PriceAtPurchase int64     `db:"price_at_purchase"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r orderItemRow) toModel() models.OrderItem {
	return models.OrderItem{
		Id:              r.Id,
		OrderId:         r.OrderId,
		ProductId:       r.ProductId,
		SellerId:        r.SellerId,
		Quantity:        r.Quantity,
		PriceAtPurchase: fromCents(r.PriceAtPurchase),
		CreatedAt:       r.CreatedAt,
	}
}

type transactionRow struct {
	Id                string    `db:"id"`
	OrderId           string    `db:"order_id"`
	SellerId          string    `db:"seller_id"`
	TotalAmount       int64     `db:"total_amount"`
	SellerAmount      int64     `db:"seller_amount"`
	PlatformAmount    int64     `db:"platform_amount"`
	CommissionRateBps int64     `db:"commission_rate_bps"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r transactionRow) toModel() models.Transaction {
	return models.Transaction{
		Id:             r.Id,
		OrderId:        r.OrderId,
		SellerId:       r.SellerId,
		TotalAmount:    fromCents(r.TotalAmount),
		SellerAmount:   fromCents(r.SellerAmount),
		PlatformAmount: fromCents(r.PlatformAmount),
		CommissionRate: fromBps(r.CommissionRateBps),
		Status:         models.TransactionStatus(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

func orderItemsToModels(rows []orderItemRow) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toModel())
	}
	return items
}

func transactionsToModels(rows []transactionRow) []models.Transaction {
	txs := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toModel())
	}
	return txs
}
