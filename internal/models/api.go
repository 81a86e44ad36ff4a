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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementResult is returned to callers of a successful settlement
type SettlementResult struct {
	OrderId           string          `json:"order_id"`
	TransactionRef    string          `json:"transaction_ref"`
	PaymentMethod     string          `json:"payment_method"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PlatformTotal     decimal.Decimal `json:"platform_total"`
	PlatformAccountId string          `json:"platform_account_id"`
	Transactions      []Transaction   `json:"transactions"`
}

// TransactionRecord represents a settled transaction in a seller's history
type TransactionRecord struct {
	Id             string          `json:"id"`
	OrderId        string          `json:"order_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	SellerAmount   decimal.Decimal `json:"seller_amount"`
	PlatformAmount decimal.Decimal `json:"platform_amount"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SellerEarnings is the reporting view of a seller's balances
type SellerEarnings struct {
	SellerId       string              `json:"seller_id"`
	TotalEarnings  decimal.Decimal     `json:"total_earnings"`
	CurrentBalance decimal.Decimal     `json:"current_balance"`
	Transactions   []TransactionRecord `json:"transactions"`
}

// PlatformRevenueReport compares the running aggregate with the ledger sum
type PlatformRevenueReport struct {
	Total       decimal.Decimal `json:"total"`
	LedgerTotal decimal.Decimal `json:"ledger_total"`
	Reconciled  bool            `json:"reconciled"`
}

// OrderDetail bundles an order, its items and its settlement rows
type OrderDetail struct {
	Order        Order         `json:"order"`
	Transactions []Transaction `json:"transactions"`
}
