package formance

import (
	"context"
	"fmt"
	"strings"

	"marketplace-ledger-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Account layout:
//
//	@world                    buyer funds entering the marketplace
//	@orders:{order_id}        transit account, always drained to zero
//	@sellers:{seller_id}      seller earnings
//	@platform:revenue         commissions
const platformRevenueAccount = "platform:revenue"

// settlementScript builds the Numscript for one order with the given number
// of seller legs. Sellers whose share is zero get no send statement.
func settlementScript(sellerLegs []int, withPlatform bool) string {
	var b strings.Builder

	b.WriteString("vars {\n")
	b.WriteString("  asset $asset\n")
	b.WriteString("  number $total\n")
	b.WriteString("  account $order_id\n")
	b.WriteString("  string $buyer_id\n")
	b.WriteString("  string $payment_method\n")
	for _, i := range sellerLegs {
		fmt.Fprintf(&b, "  account $seller_%d\n", i)
		fmt.Fprintf(&b, "  number $seller_amount_%d\n", i)
	}
	if withPlatform {
		b.WriteString("  number $platform_amount\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("send [$asset $total] (\n")
	b.WriteString("  source = @world\n")
	b.WriteString("  destination = @orders:$order_id\n")
	b.WriteString(")\n\n")

	for _, i := range sellerLegs {
		fmt.Fprintf(&b, "send [$asset $seller_amount_%d] (\n", i)
		b.WriteString("  source = @orders:$order_id\n")
		fmt.Fprintf(&b, "  destination = @sellers:$seller_%d\n", i)
		b.WriteString(")\n\n")
	}

	if withPlatform {
		b.WriteString("send [$asset $platform_amount] (\n")
		b.WriteString("  source = @orders:$order_id\n")
		b.WriteString("  destination = @" + platformRevenueAccount + "\n")
		b.WriteString(")\n\n")
	}

	b.WriteString("set_tx_meta(\"event_type\", \"order_settled\")\n")
	b.WriteString("set_tx_meta(\"buyer_id\", $buyer_id)\n")
	b.WriteString("set_tx_meta(\"payment_method\", $payment_method)\n")
	return b.String()
}

// settlementPosting returns the script and its variables for a settlement,
// with amounts converted to minor units of the configured currency.
func (s *Service) settlementPosting(order *models.Order, result *models.SettlementResult) (string, map[string]string) {
	p := int32(precisionFor(s.currency))
	minor := func(d decimal.Decimal) string {
		return d.Shift(p).BigInt().String()
	}

	vars := map[string]string{
		"asset":          formanceAsset(s.currency),
		"total":          minor(result.TotalAmount),
		"order_id":       result.OrderId,
		"buyer_id":       order.UserId,
		"payment_method": result.PaymentMethod,
	}

	var legs []int
	for i, tx := range result.Transactions {
		if !tx.SellerAmount.IsPositive() {
			continue
		}
		legs = append(legs, i)
		vars[fmt.Sprintf("seller_%d", i)] = tx.SellerId
		vars[fmt.Sprintf("seller_amount_%d", i)] = minor(tx.SellerAmount)
	}

	withPlatform := result.PlatformTotal.IsPositive()
	if withPlatform {
		vars["platform_amount"] = minor(result.PlatformTotal)
	}

	return settlementScript(legs, withPlatform), vars
}

// PublishSettlement posts the settlement as one Formance transaction using the
// settlement reference. A reference that already exists counts as published.
func (s *Service) PublishSettlement(ctx context.Context, order *models.Order, result *models.SettlementResult) error {
	if !result.TotalAmount.IsPositive() {
		zap.L().Debug("Skipping zero-value settlement", zap.String("order_id", result.OrderId))
		return nil
	}

	script, vars := s.settlementPosting(order, result)
	metadata := settlementMetadata(ctx, result)

	_, err := s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger: s.ledger,
		V2PostTransaction: shared.V2PostTransaction{
			Reference: strPtr(result.TransactionRef),
			Metadata:  metadata,
			Script: &shared.V2PostTransactionScript{
				Plain: script,
				Vars:  vars,
			},
		},
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Info("Settlement already mirrored",
				zap.String("order_id", result.OrderId),
				zap.String("reference", result.TransactionRef))
			return nil
		}
		return fmt.Errorf("error posting settlement to formance: %w", err)
	}

	zap.L().Info("Settlement mirrored to Formance",
		zap.String("order_id", result.OrderId),
		zap.String("reference", result.TransactionRef),
		zap.String("total", result.TotalAmount.String()))
	return nil
}

// settlementMetadata builds the transaction metadata, including the request
// origin when the caller attached one.
func settlementMetadata(ctx context.Context, result *models.SettlementResult) map[string]string {
	metadata := map[string]string{
		"order_id": result.OrderId,
	}
	if result.PlatformAccountId != "" {
		metadata["platform_account_id"] = result.PlatformAccountId
	}
	if sc := models.GetSettlementContext(ctx); sc != nil {
		if sc.Origin != "" {
			metadata["origin"] = sc.Origin
		}
		if sc.RequestId != "" {
			metadata["request_id"] = sc.RequestId
		}
	}
	return metadata
}

// SettledOrderSource lists settled orders and their ledger rows.
type SettledOrderSource interface {
	GetSettledOrders(ctx context.Context, limit, offset int) ([]models.Order, error)
	GetTransactionsByOrder(ctx context.Context, orderId string) ([]models.Transaction, error)
}

// Replay publishes every settled order in src, batchSize orders at a time.
// Orders already mirrored are skipped by the ledger's reference check, so
// Replay can be run repeatedly. It returns the number of orders processed.
func (s *Service) Replay(ctx context.Context, src SettledOrderSource, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	if models.GetSettlementContext(ctx) == nil {
		ctx = models.WithSettlementContext(ctx, &models.SettlementContext{Origin: models.OriginReplay})
	}

	processed := 0
	for offset := 0; ; offset += batchSize {
		orders, err := src.GetSettledOrders(ctx, batchSize, offset)
		if err != nil {
			return processed, fmt.Errorf("failed to list settled orders: %w", err)
		}

		for i := range orders {
			order := &orders[i]
			txs, err := src.GetTransactionsByOrder(ctx, order.Id)
			if err != nil {
				return processed, fmt.Errorf("failed to load transactions for order %s: %w", order.Id, err)
			}

			if err := s.PublishSettlement(ctx, order, ResultFromLedger(order, txs)); err != nil {
				return processed, err
			}
			processed++
		}

		if len(orders) < batchSize {
			break
		}
	}

	zap.L().Info("Formance replay complete", zap.Int("orders", processed))
	return processed, nil
}

// ResultFromLedger rebuilds the settlement result of a paid order from its
// persisted transactions.
func ResultFromLedger(order *models.Order, txs []models.Transaction) *models.SettlementResult {
	platform := decimal.Zero
	for _, tx := range txs {
		platform = platform.Add(tx.PlatformAmount)
	}
	return &models.SettlementResult{
		OrderId:        order.Id,
		TransactionRef: order.TransactionId,
		PaymentMethod:  order.PaymentMethod,
		TotalAmount:    order.TotalAmount,
		PlatformTotal:  platform,
		Transactions:   txs,
	}
}
