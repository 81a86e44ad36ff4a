package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketplace-ledger-go/internal/database"
	"marketplace-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSeed = `
users:
  - id: admin-1
    name: Admin
    email: admin@example.com
    role: admin
  - id: seller-a
    name: Alpha
    email: alpha@example.com
    role: seller
    commission_rate: "12.5"
  - id: seller-b
    name: Beta
    email: beta@example.com
    role: seller
  - id: buyer-1
    name: Buyer
    email: buyer@example.com
    role: buyer
carts:
  - buyer_id: buyer-1
    items:
      - product_id: widget
        seller_id: seller-a
        quantity: 2
        unit_price: "50.00"
`

func openTestDB(t *testing.T) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "seed.db"),
		MaxOpenConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestParseSeedConfig(t *testing.T) {
	seed, err := ParseSeedConfig([]byte(testSeed))
	require.NoError(t, err)
	assert.Len(t, seed.Users, 4)
	assert.Equal(t, "12.5", seed.Users[1].CommissionRate)
	require.Len(t, seed.Carts, 1)
	assert.Equal(t, 2, seed.Carts[0].Items[0].Quantity)
}

func TestParseSeedConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad role", "users:\n  - {id: u, email: u@example.com, role: root}\n"},
		{"missing email", "users:\n  - {id: u, role: buyer}\n"},
		{"bad rate", "users:\n  - {id: u, email: u@example.com, role: seller, commission_rate: lots}\n"},
		{"bad price", "carts:\n  - buyer_id: b\n    items:\n      - {seller_id: s, quantity: 1, unit_price: free}\n"},
		{"missing buyer", "carts:\n  - items: []\n"},
		{"not yaml", "users: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeedConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0o600))
	seed, err := LoadSeedConfig(path)
	require.NoError(t, err)

	require.NoError(t, ApplySeed(ctx, db, seed))

	sellerA, err := db.GetSellerBalance(ctx, "seller-a")
	require.NoError(t, err)
	require.True(t, sellerA.CommissionRate.Valid)
	assert.Equal(t, "12.5", sellerA.CommissionRate.Decimal.String())

	sellerB, err := db.GetSellerBalance(ctx, "seller-b")
	require.NoError(t, err)
	assert.False(t, sellerB.CommissionRate.Valid)

	accounts, err := db.GetPlatformAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	cart, err := db.GetCart(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, cart, 1)

	sellers, err := InitializeUsers(ctx, db, "", models.RoleSeller, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, sellers, 2)

	one, err := InitializeUsers(ctx, db, "buyer-1", "", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, models.RoleBuyer, one[0].Role)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(errString("sync /dev/stderr: inappropriate ioctl for device")))
	assert.False(t, isIgnorableSyncError(errString("disk full")))
}

type errString string

func (e errString) Error() string { return string(e) }
