// Package testutil opens throwaway SQLite ledgers and seeds the parties a
// settlement needs.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"marketplace-ledger-go/internal/database"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

const (
	AdminId = "admin-1"
	BuyerId = "buyer-1"
)

// NewLedger opens a migrated SQLite database in t.TempDir. It is closed when
// the test finishes.
func NewLedger(t *testing.T) *database.Service {
	t.Helper()

	cfg := models.DatabaseConfig{
		Driver:          database.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     10 * time.Second,
	}

	svc, err := database.NewService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test ledger: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

// CreateBuyer inserts a buyer with the given id.
func CreateBuyer(t *testing.T, db store.LedgerStore, id string) {
	t.Helper()
	if _, err := db.CreateUser(context.Background(), id, "Buyer "+id, id+"@example.com", models.RoleBuyer); err != nil {
		t.Fatalf("Failed to create buyer %s: %v", id, err)
	}
}

// CreateSeller inserts a seller and its profile. An empty rate leaves the
// commission rate unset.
func CreateSeller(t *testing.T, db store.LedgerStore, id, rate string) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.CreateUser(ctx, id, "Seller "+id, id+"@example.com", models.RoleSeller); err != nil {
		t.Fatalf("Failed to create seller %s: %v", id, err)
	}

	commission := decimal.NullDecimal{}
	if rate != "" {
		commission = decimal.NewNullDecimal(decimal.RequireFromString(rate))
	}
	if err := db.UpsertSeller(ctx, id, commission); err != nil {
		t.Fatalf("Failed to create seller profile %s: %v", id, err)
	}
}

// CreatePlatform inserts an admin and its platform revenue account.
func CreatePlatform(t *testing.T, db store.LedgerStore, adminId string) *models.PlatformRevenue {
	t.Helper()
	ctx := context.Background()
	if _, err := db.CreateUser(ctx, adminId, "Admin "+adminId, adminId+"@example.com", models.RoleAdmin); err != nil {
		t.Fatalf("Failed to create admin %s: %v", adminId, err)
	}
	account, err := db.CreatePlatformAccount(ctx, adminId)
	if err != nil {
		t.Fatalf("Failed to create platform account: %v", err)
	}
	return account
}

// AddToCart appends a line to the buyer's cart.
func AddToCart(t *testing.T, db store.LedgerStore, buyerId, productId, sellerId string, quantity int, price string) {
	t.Helper()
	_, err := db.AddCartItem(context.Background(), store.CartItemParams{
		UserId:    buyerId,
		ProductId: productId,
		SellerId:  sellerId,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("Failed to add cart item: %v", err)
	}
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
