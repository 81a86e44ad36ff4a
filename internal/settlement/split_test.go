package settlement

import (
	"errors"
	"testing"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

func item(seller string, qty int, price string) models.OrderItem {
	return models.OrderItem{
		Id:              seller + "-" + price,
		SellerId:        seller,
		Quantity:        qty,
		PriceAtPurchase: decimal.RequireFromString(price),
	}
}

func TestSplit_SingleSeller(t *testing.T) {
	splits, err := Split([]models.OrderItem{item("seller-a", 2, "50.00")}, nil, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(splits) != 1 {
		t.Fatalf("Expected 1 split, got %d", len(splits))
	}
	s := splits[0]
	if !s.ItemTotal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected item total 100, got %s", s.ItemTotal.String())
	}
	if !s.PlatformAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected platform amount 10, got %s", s.PlatformAmount.String())
	}
	if !s.SellerAmount.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Expected seller amount 90, got %s", s.SellerAmount.String())
	}
}

func TestSplit_GroupsBySellerInFirstAppearanceOrder(t *testing.T) {
	items := []models.OrderItem{
		item("seller-b", 1, "40.00"),
		item("seller-a", 1, "60.00"),
		item("seller-b", 1, "10.00"),
		item("seller-a", 1, "40.00"),
	}
	rates := map[string]decimal.Decimal{"seller-b": decimal.NewFromInt(20)}

	splits, err := Split(items, rates, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(splits) != 2 {
		t.Fatalf("Expected 2 splits, got %d", len(splits))
	}
	if splits[0].SellerId != "seller-b" || splits[1].SellerId != "seller-a" {
		t.Fatalf("Unexpected seller order: %s, %s", splits[0].SellerId, splits[1].SellerId)
	}

	tests := []struct {
		split    SellerSplit
		total    string
		rate     string
		platform string
		seller   string
	}{
		{splits[0], "50", "20", "10", "40"},
		{splits[1], "100", "10", "10", "90"},
	}
	for _, tt := range tests {
		if !tt.split.ItemTotal.Equal(decimal.RequireFromString(tt.total)) {
			t.Errorf("%s: expected total %s, got %s", tt.split.SellerId, tt.total, tt.split.ItemTotal.String())
		}
		if !tt.split.CommissionRate.Equal(decimal.RequireFromString(tt.rate)) {
			t.Errorf("%s: expected rate %s, got %s", tt.split.SellerId, tt.rate, tt.split.CommissionRate.String())
		}
		if !tt.split.PlatformAmount.Equal(decimal.RequireFromString(tt.platform)) {
			t.Errorf("%s: expected platform %s, got %s", tt.split.SellerId, tt.platform, tt.split.PlatformAmount.String())
		}
		if !tt.split.SellerAmount.Equal(decimal.RequireFromString(tt.seller)) {
			t.Errorf("%s: expected seller %s, got %s", tt.split.SellerId, tt.seller, tt.split.SellerAmount.String())
		}
	}

	if !PlatformTotal(splits).Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected platform total 20, got %s", PlatformTotal(splits).String())
	}
}

func TestSplit_RoundsPlatformCutDown(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		rate     string
		platform string
		seller   string
	}{
		{"third of a cent", "0.33", "10", "0.03", "0.30"},
		{"fractional rate", "19.99", "12.5", "2.49", "17.50"},
		{"zero rate", "42.42", "0", "0.00", "42.42"},
		{"full rate", "42.42", "100", "42.42", "0.00"},
		{"zero price", "0.00", "10", "0.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := decimal.RequireFromString(tt.rate)
			splits, err := Split([]models.OrderItem{item("s", 1, tt.total)}, nil, rate)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			s := splits[0]
			if !s.PlatformAmount.Equal(decimal.RequireFromString(tt.platform)) {
				t.Errorf("Expected platform %s, got %s", tt.platform, s.PlatformAmount.String())
			}
			if !s.SellerAmount.Equal(decimal.RequireFromString(tt.seller)) {
				t.Errorf("Expected seller %s, got %s", tt.seller, s.SellerAmount.String())
			}
			if !s.SellerAmount.Add(s.PlatformAmount).Equal(s.ItemTotal) {
				t.Errorf("Seller %s + platform %s != total %s",
					s.SellerAmount.String(), s.PlatformAmount.String(), s.ItemTotal.String())
			}
		})
	}
}

func TestSplit_EmptyItems(t *testing.T) {
	_, err := Split(nil, nil, decimal.NewFromInt(10))
	if !errors.Is(err, store.ErrEmptySettlement) {
		t.Errorf("Expected ErrEmptySettlement, got %v", err)
	}
}

func TestSplit_RejectsInvalidRate(t *testing.T) {
	rates := map[string]decimal.Decimal{"s": decimal.NewFromInt(101)}
	if _, err := Split([]models.OrderItem{item("s", 1, "10.00")}, rates, decimal.NewFromInt(10)); err == nil {
		t.Error("Expected error for rate above 100")
	}
}

func TestSplit_RejectsZeroQuantity(t *testing.T) {
	_, err := Split([]models.OrderItem{item("s", 0, "10.00")}, nil, decimal.NewFromInt(10))
	if !errors.Is(err, store.ErrInvalidCartLine) {
		t.Errorf("Expected ErrInvalidCartLine, got %v", err)
	}
}

func TestValidRate(t *testing.T) {
	tests := []struct {
		rate string
		want bool
	}{
		{"0", true},
		{"10", true},
		{"12.75", true},
		{"100", true},
		{"-1", false},
		{"100.01", false},
		{"10.125", false},
	}
	for _, tt := range tests {
		if got := ValidRate(decimal.RequireFromString(tt.rate)); got != tt.want {
			t.Errorf("ValidRate(%s) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}
