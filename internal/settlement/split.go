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
	"fmt"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SellerSplit is one seller's share of an order.
type SellerSplit struct {
	SellerId       string
	ItemTotal      decimal.Decimal
	CommissionRate decimal.Decimal
	PlatformAmount decimal.Decimal
	SellerAmount   decimal.Decimal
}

// PlatformCut returns the commission on itemTotal at rate percent, rounded
// down to the cent. The seller keeps the remainder, so the two parts always
// add back up to itemTotal.
func PlatformCut(itemTotal, rate decimal.Decimal) decimal.Decimal {
	return itemTotal.Mul(rate).Shift(-2).RoundDown(models.MoneyScale)
}

// ValidRate reports whether rate is a percentage in [0, 100] with at most two
// decimal places.
func ValidRate(rate decimal.Decimal) bool {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return false
	}
	return rate.Equal(rate.Round(models.RateScale))
}

// Split groups items by seller, in order of first appearance, and divides each
// seller's total between the seller and the platform. rates holds the
// per-seller commission percentage; sellers missing from it use defaultRate.
func Split(items []models.OrderItem, rates map[string]decimal.Decimal, defaultRate decimal.Decimal) ([]SellerSplit, error) {
	if len(items) == 0 {
		return nil, store.ErrEmptySettlement
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %s has quantity %d", store.ErrInvalidCartLine, item.Id, item.Quantity)
		}
		if _, seen := totals[item.SellerId]; !seen {
			order = append(order, item.SellerId)
			totals[item.SellerId] = decimal.Zero
		}
		totals[item.SellerId] = totals[item.SellerId].Add(item.LineTotal())
	}

	splits := make([]SellerSplit, 0, len(order))
	for _, sellerId := range order {
		rate, ok := rates[sellerId]
		if !ok {
			rate = defaultRate
		}
		if !ValidRate(rate) {
			return nil, fmt.Errorf("invalid commission rate %s for seller %s", rate.String(), sellerId)
		}

		itemTotal := totals[sellerId]
		platform := PlatformCut(itemTotal, rate)
		splits = append(splits, SellerSplit{
			SellerId:       sellerId,
			ItemTotal:      itemTotal,
			CommissionRate: rate,
			PlatformAmount: platform,
			SellerAmount:   itemTotal.Sub(platform),
		})
	}

	return splits, nil
}

// PlatformTotal returns Σ platform_amount over splits.
func PlatformTotal(splits []SellerSplit) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.PlatformAmount)
	}
	return total
}
