package formance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/settlement"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Compile-time check: *Service can receive committed settlements.
var _ settlement.Mirror = (*Service)(nil)

const defaultLedgerName = "marketplace"

// Service mirrors committed settlements into a Formance Stack ledger. The SQL
// ledger stays the source of truth; the mirror is best effort and idempotent
// by transaction reference.
type Service struct {
	client   *v3.Formance
	ledger   string
	currency string
}

// NewService connects to the stack and creates the ledger if it doesn't already exist.
func NewService(ctx context.Context, cfg models.FormanceConfig) (*Service, error) {
	if cfg.StackURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("formance config requires StackURL, ClientID, and ClientSecret")
	}
	if cfg.LedgerName == "" {
		cfg.LedgerName = defaultLedgerName
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	zap.L().Info("Connecting to Formance Stack",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))

	httpClient, err := createCustomHttpClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	client := v3.New(
		v3.WithServerURL(cfg.StackURL),
		v3.WithClient(&httpClient),
		v3.WithSecurity(shared.Security{
			ClientID:     v3.Pointer(cfg.ClientID),
			ClientSecret: v3.Pointer(cfg.ClientSecret),
		}),
	)

	svc := &Service{client: client, ledger: cfg.LedgerName, currency: cfg.Currency}

	if err := svc.ensureLedger(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger exists: %w", err)
	}

	zap.L().Info("Formance service initialized", zap.String("ledger", cfg.LedgerName))
	return svc, nil
}

func createCustomHttpClient() (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}, nil
}

// ensureLedger creates the ledger if it does not already exist.
func (s *Service) ensureLedger(ctx context.Context) error {
	_, err := s.client.Ledger.V2.CreateLedger(ctx, operations.V2CreateLedgerRequest{
		Ledger: s.ledger,
		V2CreateLedgerRequest: shared.V2CreateLedgerRequest{
			Metadata: map[string]string{
				"application": "marketplace-ledger",
			},
		},
	})
	if err != nil {
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumLedgerAlreadyExists {
			zap.L().Info("Ledger already exists", zap.String("ledger", s.ledger))
			return nil
		}
		return err
	}
	zap.L().Info("Ledger created", zap.String("ledger", s.ledger))
	return nil
}

// Close is a no-op (HTTP client needs no teardown).
func (s *Service) Close() {}

// ---------- helpers ----------

// currencyPrecision maps ISO currency codes to their minor-unit precision.
var currencyPrecision = map[string]int{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
}

func precisionFor(currency string) int {
	if p, ok := currencyPrecision[currency]; ok {
		return p
	}
	return models.MoneyScale
}

// formanceAsset returns the Formance UMN notation, e.g. "USD/2".
func formanceAsset(currency string) string {
	return fmt.Sprintf("%s/%d", currency, precisionFor(currency))
}

// isConflictError checks whether a Formance SDK error is a CONFLICT (duplicate reference).
func isConflictError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumConflict
}

// isNotFoundError checks whether a Formance SDK error is NOT_FOUND.
func isNotFoundError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumNotFound
}

func strPtr(s string) *string { return &s }
