package formance

import (
	"context"
	"fmt"
	"strings"

	"marketplace-ledger-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

const sellerAccountPrefix = "sellers:"

// SellerAccount is the metadata view of a mirrored @sellers:{id} account.
type SellerAccount struct {
	SellerId       string
	Name           string
	CommissionRate string // percentage, or "default"
}

// TagSellerAccount writes seller metadata onto @sellers:{id}. The account
// is created if it has never received a posting.
func (s *Service) TagSellerAccount(ctx context.Context, seller models.SellerBalance, name string) error {
	addr := sellerAccountPrefix + seller.UserId
	zap.L().Debug("Tagging seller account in Formance", zap.String("address", addr))

	_, err := s.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:      s.ledger,
		Address:     addr,
		RequestBody: sellerMetadata(seller, name),
	})
	if err != nil {
		return fmt.Errorf("failed to tag seller account %s: %w", addr, err)
	}
	return nil
}

// ListSellerAccounts returns up to pageSize tagged seller accounts.
func (s *Service) ListSellerAccounts(ctx context.Context, pageSize int64) ([]SellerAccount, error) {
	resp, err := s.client.Ledger.V2.ListAccounts(ctx, operations.V2ListAccountsRequest{
		Ledger:   s.ledger,
		PageSize: ptrInt64(pageSize),
		RequestBody: map[string]any{
			"$match": map[string]any{
				"metadata[entity_type]": "seller",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list seller accounts: %w", err)
	}

	var sellers []SellerAccount
	for i := range resp.V2AccountsCursorResponse.Cursor.Data {
		if acct, ok := accountToSeller(&resp.V2AccountsCursorResponse.Cursor.Data[i]); ok {
			sellers = append(sellers, acct)
		}
	}
	return sellers, nil
}

func sellerMetadata(seller models.SellerBalance, name string) map[string]string {
	rate := "default"
	if seller.CommissionRate.Valid {
		rate = seller.CommissionRate.Decimal.StringFixed(models.RateScale)
	}
	return map[string]string{
		"entity_type":     "seller",
		"seller_id":       seller.UserId,
		"name":            name,
		"commission_rate": rate,
	}
}

func accountToSeller(acct *shared.V2Account) (SellerAccount, bool) {
	id, ok := strings.CutPrefix(acct.Address, sellerAccountPrefix)
	if !ok || id == "" || strings.Contains(id, ":") {
		return SellerAccount{}, false
	}
	return SellerAccount{
		SellerId:       id,
		Name:           acct.Metadata["name"],
		CommissionRate: acct.Metadata["commission_rate"],
	}, true
}

func ptrInt64(v int64) *int64 { return &v }
