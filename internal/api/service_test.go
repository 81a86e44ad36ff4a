package api_test

import (
	"context"
	"errors"
	"testing"

	"marketplace-ledger-go/internal/api"
	"marketplace-ledger-go/internal/checkout"
	"marketplace-ledger-go/internal/database"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/settlement"
	"marketplace-ledger-go/internal/store"
	"marketplace-ledger-go/internal/testutil"

	"github.com/shopspring/decimal"
)

func settledOrder(t *testing.T) (*database.Service, *models.Order) {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewLedger(t)
	testutil.CreatePlatform(t, db, testutil.AdminId)
	testutil.CreateSeller(t, db, "seller-a", "10")
	testutil.CreateSeller(t, db, "seller-b", "20")
	testutil.CreateBuyer(t, db, testutil.BuyerId)
	testutil.AddToCart(t, db, testutil.BuyerId, "widget", "seller-a", 1, "100.00")
	testutil.AddToCart(t, db, testutil.BuyerId, "gadget", "seller-b", 1, "50.00")

	order, err := checkout.NewMaterializer(db, "").CheckoutCart(ctx, testutil.BuyerId, models.Address{Line1: "1 Main St"}, nil, "")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	engine, err := settlement.NewEngine(settlement.EngineConfig{Store: db, DefaultCommissionRate: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if _, err := engine.Settle(ctx, order.Id, ""); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	return db, order
}

func TestGetSellerEarnings(t *testing.T) {
	db, order := settledOrder(t)
	svc := api.NewLedgerService(db)

	earnings, err := svc.GetSellerEarnings(context.Background(), "seller-b", 0, 0)
	if err != nil {
		t.Fatalf("GetSellerEarnings failed: %v", err)
	}
	if !earnings.TotalEarnings.Equal(testutil.Dec("40")) {
		t.Errorf("Expected total earnings 40, got %s", earnings.TotalEarnings.String())
	}
	if !earnings.CurrentBalance.Equal(testutil.Dec("40")) {
		t.Errorf("Expected current balance 40, got %s", earnings.CurrentBalance.String())
	}
	if len(earnings.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(earnings.Transactions))
	}
	tx := earnings.Transactions[0]
	if tx.OrderId != order.Id {
		t.Errorf("Expected order %s, got %s", order.Id, tx.OrderId)
	}
	if !tx.PlatformAmount.Equal(testutil.Dec("10")) {
		t.Errorf("Expected platform amount 10, got %s", tx.PlatformAmount.String())
	}
	if !tx.CommissionRate.Equal(testutil.Dec("20")) {
		t.Errorf("Expected commission rate 20, got %s", tx.CommissionRate.String())
	}

	_, err = svc.GetSellerEarnings(context.Background(), "ghost", 0, 0)
	if !errors.Is(err, store.ErrInvalidSellerReference) {
		t.Errorf("Expected ErrInvalidSellerReference, got %v", err)
	}
}

func TestGetPlatformRevenue(t *testing.T) {
	db, _ := settledOrder(t)
	svc := api.NewLedgerService(db)

	report, err := svc.GetPlatformRevenue(context.Background())
	if err != nil {
		t.Fatalf("GetPlatformRevenue failed: %v", err)
	}
	if !report.Total.Equal(testutil.Dec("20")) {
		t.Errorf("Expected platform revenue 20, got %s", report.Total.String())
	}
	if !report.Reconciled {
		t.Errorf("Expected platform revenue to reconcile, ledger total %s", report.LedgerTotal.String())
	}
}

func TestReconcileSeller(t *testing.T) {
	db, _ := settledOrder(t)
	svc := api.NewLedgerService(db)

	for _, seller := range []string{"seller-a", "seller-b"} {
		if err := svc.ReconcileSeller(context.Background(), seller); err != nil {
			t.Errorf("ReconcileSeller(%s) failed: %v", seller, err)
		}
	}
	if err := svc.ReconcileSeller(context.Background(), ""); err == nil {
		t.Error("Expected error for empty seller id")
	}
}

func TestGetOrderDetail(t *testing.T) {
	db, order := settledOrder(t)
	svc := api.NewLedgerService(db)

	detail, err := svc.GetOrderDetail(context.Background(), order.Id)
	if err != nil {
		t.Fatalf("GetOrderDetail failed: %v", err)
	}
	if detail.Order.PaymentStatus != models.PaymentPaid {
		t.Errorf("Expected payment status paid, got %s", detail.Order.PaymentStatus)
	}
	if len(detail.Order.Items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(detail.Order.Items))
	}
	if len(detail.Transactions) != 2 {
		t.Errorf("Expected 2 transactions, got %d", len(detail.Transactions))
	}

	if _, err := svc.GetOrderDetail(context.Background(), "missing"); !errors.Is(err, store.ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetBuyerOrders(t *testing.T) {
	db, order := settledOrder(t)
	svc := api.NewLedgerService(db)

	orders, err := svc.GetBuyerOrders(context.Background(), testutil.BuyerId, 500, -1)
	if err != nil {
		t.Fatalf("GetBuyerOrders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].Id != order.Id {
		t.Errorf("Expected the buyer's single order, got %d orders", len(orders))
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db, order := settledOrder(t)
	svc := api.NewLedgerService(db)
	ctx := context.Background()

	updated, err := svc.UpdateOrderStatus(ctx, order.Id, models.OrderConfirmed)
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if updated.OrderStatus != models.OrderConfirmed {
		t.Errorf("Expected status confirmed, got %s", updated.OrderStatus)
	}

	tests := []struct {
		name string
		next models.OrderStatus
	}{
		{"skips a step", models.OrderDelivered},
		{"unknown status", models.OrderStatus("lost")},
		{"backwards", models.OrderProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateOrderStatus(ctx, order.Id, tt.next)
			if !errors.Is(err, store.ErrInvalidStatusTransition) {
				t.Errorf("Expected ErrInvalidStatusTransition, got %v", err)
			}
		})
	}

	if _, err := svc.UpdateOrderStatus(ctx, "missing", models.OrderConfirmed); !errors.Is(err, store.ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestCartOperations(t *testing.T) {
	db := testutil.NewLedger(t)
	testutil.CreateBuyer(t, db, testutil.BuyerId)
	svc := api.NewLedgerService(db)
	ctx := context.Background()

	if _, err := svc.AddCartItem(ctx, store.CartItemParams{
		UserId:    testutil.BuyerId,
		ProductId: "widget",
		SellerId:  "seller-a",
		Quantity:  2,
		UnitPrice: testutil.Dec("5.00"),
	}); err != nil {
		t.Fatalf("AddCartItem failed: %v", err)
	}

	cart, err := svc.GetCart(ctx, testutil.BuyerId)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart) != 1 {
		t.Errorf("Expected 1 cart item, got %d", len(cart))
	}

	if err := svc.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
