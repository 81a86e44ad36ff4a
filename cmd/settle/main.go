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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"marketplace-ledger-go/internal/common"
	"marketplace-ledger-go/internal/config"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"go.uber.org/zap"
)

type settleRequest struct {
	orderId       string
	buyerId       string
	paymentMethod string
	line1         string
	city          string
	country       string
	postalCode    string
}

func parseAndValidateFlags() (*settleRequest, error) {
	orderFlag := flag.String("order", "", "Order id to settle")
	buyerFlag := flag.String("checkout", "", "Buyer id whose cart is checked out and then settled")
	methodFlag := flag.String("method", "", "Payment method (defaults to the method chosen at checkout)")
	line1Flag := flag.String("line1", "", "Shipping address line (with --checkout)")
	cityFlag := flag.String("city", "", "Shipping city (with --checkout)")
	countryFlag := flag.String("country", "", "Shipping country (with --checkout)")
	postalFlag := flag.String("postal-code", "", "Shipping postal code (with --checkout)")
	flag.Parse()

	if (*orderFlag == "") == (*buyerFlag == "") {
		return nil, fmt.Errorf("exactly one of --order or --checkout is required")
	}

	return &settleRequest{
		orderId:       *orderFlag,
		buyerId:       *buyerFlag,
		paymentMethod: *methodFlag,
		line1:         *line1Flag,
		city:          *cityFlag,
		country:       *countryFlag,
		postalCode:    *postalFlag,
	}, nil
}

func printResult(result *models.SettlementResult) {
	common.PrintHeader("SETTLEMENT RESULT", common.DefaultWidth)
	fmt.Printf("Order:        %s\n", result.OrderId)
	fmt.Printf("Reference:    %s\n", result.TransactionRef)
	fmt.Printf("Method:       %s\n", result.PaymentMethod)
	fmt.Printf("Total:        %s\n", common.FormatMoney(result.TotalAmount))
	fmt.Printf("Platform cut: %s (account %s)\n", common.FormatMoney(result.PlatformTotal), result.PlatformAccountId)
	fmt.Println()

	for i, tx := range result.Transactions {
		isLast := i == len(result.Transactions)-1
		fmt.Printf("%s %-36s  total %12s  seller %12s  platform %10s  (%s%%)\n",
			common.BoxPrefix(isLast),
			tx.SellerId,
			common.FormatMoney(tx.TotalAmount),
			common.FormatMoney(tx.SellerAmount),
			common.FormatMoney(tx.PlatformAmount),
			tx.CommissionRate.String())
	}

	common.PrintFooter(fmt.Sprintf("%d seller transactions recorded", len(result.Transactions)), common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	orderId := req.orderId
	if req.buyerId != "" {
		order, err := services.Materializer.CheckoutCart(ctx, req.buyerId, models.Address{
			Line1:      req.line1,
			City:       req.city,
			Country:    req.country,
			PostalCode: req.postalCode,
		}, nil, req.paymentMethod)
		if err != nil {
			zap.L().Fatal("Checkout failed", zap.String("buyer_id", req.buyerId), zap.Error(err))
		}
		fmt.Printf("✓ Created order %s for %s\n", order.Id, common.FormatMoney(order.TotalAmount))
		orderId = order.Id
	}

	ctx = models.WithSettlementContext(ctx, &models.SettlementContext{Origin: models.OriginCLI})
	result, err := services.Engine.Settle(ctx, orderId, req.paymentMethod)
	if err != nil {
		if errors.Is(err, store.ErrAlreadySettled) {
			fmt.Printf("✗ Order %s is already settled\n", orderId)
			os.Exit(2)
		}
		if store.IsRetryable(err) {
			zap.L().Fatal("Settlement failed, safe to retry", zap.String("order_id", orderId), zap.Error(err))
		}
		zap.L().Fatal("Settlement rejected", zap.String("order_id", orderId), zap.Error(err))
	}

	printResult(result)
}
