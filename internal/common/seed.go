package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// SeedConfig describes the fixture data loaded by cmd/setup.
type SeedConfig struct {
	Users []SeedUser `yaml:"users"`
	Carts []SeedCart `yaml:"carts"`
}

type SeedUser struct {
	Id    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
	// CommissionRate is a percentage for sellers; empty means the default rate.
	CommissionRate string `yaml:"commission_rate"`
}

type SeedCart struct {
	BuyerId string         `yaml:"buyer_id"`
	Items   []SeedCartItem `yaml:"items"`
}

type SeedCartItem struct {
	ProductId string `yaml:"product_id"`
	SellerId  string `yaml:"seller_id"`
	Quantity  int    `yaml:"quantity"`
	UnitPrice string `yaml:"unit_price"`
}

func LoadSeedConfig(seedFile string) (*SeedConfig, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	return ParseSeedConfig(data)
}

func ParseSeedConfig(data []byte) (*SeedConfig, error) {
	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse seed file: %w", err)
	}

	for i, user := range config.Users {
		if user.Id == "" || user.Email == "" {
			return nil, fmt.Errorf("user at index %d missing id or email", i)
		}
		if !models.UserRole(user.Role).Valid() {
			return nil, fmt.Errorf("user %s has invalid role %q", user.Id, user.Role)
		}
		if user.CommissionRate != "" {
			if _, err := decimal.NewFromString(user.CommissionRate); err != nil {
				return nil, fmt.Errorf("user %s has invalid commission_rate %q: %w", user.Id, user.CommissionRate, err)
			}
		}
	}

	for i, cart := range config.Carts {
		if cart.BuyerId == "" {
			return nil, fmt.Errorf("cart at index %d missing buyer_id", i)
		}
		for j, item := range cart.Items {
			if _, err := decimal.NewFromString(item.UnitPrice); err != nil {
				return nil, fmt.Errorf("cart %s item %d has invalid unit_price %q: %w", cart.BuyerId, j, item.UnitPrice, err)
			}
		}
	}

	return &config, nil
}

// ApplySeed creates users, seller profiles, one platform account per admin
// and cart lines. Users and profiles are upserted, so re-running is safe;
// cart lines are appended.
func ApplySeed(ctx context.Context, db store.LedgerStore, seed *SeedConfig) error {
	for _, u := range seed.Users {
		role := models.UserRole(u.Role)
		if _, err := db.CreateUser(ctx, u.Id, u.Name, u.Email, role); err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Id, err)
		}

		switch role {
		case models.RoleSeller:
			rate := decimal.NullDecimal{}
			if u.CommissionRate != "" {
				rate = decimal.NewNullDecimal(decimal.RequireFromString(u.CommissionRate))
			}
			if err := db.UpsertSeller(ctx, u.Id, rate); err != nil {
				return fmt.Errorf("failed to create seller profile %s: %w", u.Id, err)
			}
		case models.RoleAdmin:
			if _, err := db.CreatePlatformAccount(ctx, u.Id); err != nil {
				return fmt.Errorf("failed to create platform account for %s: %w", u.Id, err)
			}
		}
	}

	for _, cart := range seed.Carts {
		for _, item := range cart.Items {
			_, err := db.AddCartItem(ctx, store.CartItemParams{
				UserId:    cart.BuyerId,
				ProductId: item.ProductId,
				SellerId:  item.SellerId,
				Quantity:  item.Quantity,
				UnitPrice: decimal.RequireFromString(item.UnitPrice),
			})
			if err != nil {
				return fmt.Errorf("failed to add cart item for %s: %w", cart.BuyerId, err)
			}
		}
	}

	zap.L().Info("Seed applied",
		zap.Int("users", len(seed.Users)),
		zap.Int("carts", len(seed.Carts)))
	return nil
}
