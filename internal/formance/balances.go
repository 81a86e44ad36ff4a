package formance

import (
	"context"
	"fmt"
	"math/big"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetSellerBalance returns the mirrored balance of @sellers:{sellerId}.
func (s *Service) GetSellerBalance(ctx context.Context, sellerId string) (decimal.Decimal, error) {
	return s.accountBalance(ctx, sellerAccountPrefix+sellerId)
}

// GetPlatformBalance returns the mirrored balance of the platform revenue account.
func (s *Service) GetPlatformBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.accountBalance(ctx, platformRevenueAccount)
}

func (s *Service) accountBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	zap.L().Debug("Getting account balance from Formance", zap.String("address", address))

	vols, err := s.getAccountVolumes(ctx, address)
	if err != nil {
		if isNotFoundError(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get account %s: %w", address, err)
	}

	fAsset := formanceAsset(s.currency)
	if bal := volumeBalance(vols, fAsset); bal != nil {
		return bigIntToDecimal(bal, precisionFor(s.currency)), nil
	}
	return decimal.Zero, nil
}

// getAccountVolumes fetches volumes for a single account via GetAccount.
func (s *Service) getAccountVolumes(ctx context.Context, address string) (map[string]shared.V2Volume, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		return nil, err
	}
	return resp.V2AccountResponse.Data.Volumes, nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// bigIntToDecimal converts a *big.Int in minor units to a decimal amount.
func bigIntToDecimal(raw *big.Int, precision int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(precision))
}
