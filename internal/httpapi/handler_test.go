package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSettler struct {
	mock.Mock
}

func (m *mockSettler) Settle(ctx context.Context, orderId, paymentMethod string) (*models.SettlementResult, error) {
	args := m.Called(ctx, orderId, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementResult), args.Error(1)
}

type mockCheckout struct {
	mock.Mock
}

func (m *mockCheckout) CheckoutCart(ctx context.Context, buyerId string, shipping models.Address, billing *models.Address, paymentMethod string) (*models.Order, error) {
	args := m.Called(ctx, buyerId, shipping, billing, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockLedger) GetOrderDetail(ctx context.Context, orderId string) (*models.OrderDetail, error) {
	args := m.Called(ctx, orderId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderDetail), args.Error(1)
}

func (m *mockLedger) GetBuyerOrders(ctx context.Context, buyerId string, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, buyerId, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockLedger) UpdateOrderStatus(ctx context.Context, orderId string, next models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, orderId, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockLedger) GetSellerEarnings(ctx context.Context, sellerId string, limit, offset int) (*models.SellerEarnings, error) {
	args := m.Called(ctx, sellerId, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SellerEarnings), args.Error(1)
}

func (m *mockLedger) GetPlatformRevenue(ctx context.Context) (*models.PlatformRevenueReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformRevenueReport), args.Error(1)
}

func (m *mockLedger) AddCartItem(ctx context.Context, params store.CartItemParams) (*models.CartItem, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *mockLedger) GetCart(ctx context.Context, buyerId string) ([]models.CartItem, error) {
	args := m.Called(ctx, buyerId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

type fixture struct {
	checkout *mockCheckout
	settler  *mockSettler
	ledger   *mockLedger
	router   http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		checkout: new(mockCheckout),
		settler:  new(mockSettler),
		ledger:   new(mockLedger),
	}
	f.router = NewRouter(NewHandler(f.checkout, f.settler, f.ledger))
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Settle_Success(t *testing.T) {
	f := newFixture()
	result := &models.SettlementResult{
		OrderId:        "order-1",
		TransactionRef: "TXN-1",
		PaymentMethod:  "card",
		TotalAmount:    decimal.RequireFromString("150"),
		PlatformTotal:  decimal.RequireFromString("15"),
	}
	f.settler.On("Settle", mock.Anything, "order-1", "card").Return(result, nil).Once()

	rr := f.do(t, http.MethodPost, "/v1/orders/order-1/settle", map[string]string{"payment_method": "card"})
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.SettlementResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "TXN-1", got.TransactionRef)
	assert.True(t, got.PlatformTotal.Equal(decimal.RequireFromString("15")))
	f.settler.AssertExpectations(t)
}

func TestHandler_Settle_WithoutBody(t *testing.T) {
	f := newFixture()
	f.settler.On("Settle", mock.Anything, "order-1", "").Return(&models.SettlementResult{OrderId: "order-1"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/order-1/settle", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	f.settler.AssertExpectations(t)
}

func TestHandler_Settle_TagsOrigin(t *testing.T) {
	f := newFixture()
	withOrigin := mock.MatchedBy(func(ctx context.Context) bool {
		sc := models.GetSettlementContext(ctx)
		return sc != nil && sc.Origin == models.OriginHTTP && sc.RequestId != ""
	})
	f.settler.On("Settle", withOrigin, "order-1", "").Return(&models.SettlementResult{OrderId: "order-1"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/order-1/settle", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	f.settler.AssertExpectations(t)
}

func TestHandler_Settle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"already settled", fmt.Errorf("%w: order-1", store.ErrAlreadySettled), http.StatusConflict},
		{"invalid payment state", store.ErrInvalidPaymentState, http.StatusConflict},
		{"not found", store.ErrOrderNotFound, http.StatusNotFound},
		{"empty settlement", store.ErrEmptySettlement, http.StatusBadRequest},
		{"invalid seller", store.ErrInvalidSellerReference, http.StatusBadRequest},
		{"storage failure", store.NewPersistenceError("commit", errors.New("disk full")), http.StatusServiceUnavailable},
		{"no platform account", store.ErrNoPlatformAccount, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.settler.On("Settle", mock.Anything, "order-1", "").Return(nil, tt.err).Once()

			rr := f.do(t, http.MethodPost, "/v1/orders/order-1/settle", map[string]string{})
			assert.Equal(t, tt.want, rr.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandler_Checkout(t *testing.T) {
	f := newFixture()
	shipping := models.Address{Line1: "1 Main St", Country: "US"}
	order := &models.Order{Id: "order-1", UserId: "buyer-1", TotalAmount: decimal.RequireFromString("130")}
	f.checkout.On("CheckoutCart", mock.Anything, "buyer-1", shipping, (*models.Address)(nil), "").Return(order, nil).Once()

	rr := f.do(t, http.MethodPost, "/v1/checkout", map[string]any{
		"buyer_id":         "buyer-1",
		"shipping_address": shipping,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var got models.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "order-1", got.Id)
	f.checkout.AssertExpectations(t)
}

func TestHandler_Checkout_BadRequests(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/v1/checkout", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.checkout.On("CheckoutCart", mock.Anything, "buyer-1", models.Address{}, (*models.Address)(nil), "").
		Return(nil, store.ErrEmptyCart).Once()
	rr = f.do(t, http.MethodPost, "/v1/checkout", map[string]any{"buyer_id": "buyer-1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	f.checkout.AssertExpectations(t)
}

func TestHandler_GetOrder(t *testing.T) {
	f := newFixture()
	detail := &models.OrderDetail{Order: models.Order{Id: "order-1"}}
	f.ledger.On("GetOrderDetail", mock.Anything, "order-1").Return(detail, nil).Once()
	f.ledger.On("GetOrderDetail", mock.Anything, "missing").Return(nil, store.ErrOrderNotFound).Once()

	rr := f.do(t, http.MethodGet, "/v1/orders/order-1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	f.ledger.AssertExpectations(t)
}

func TestHandler_UpdateOrderStatus(t *testing.T) {
	f := newFixture()
	f.ledger.On("UpdateOrderStatus", mock.Anything, "order-1", models.OrderShipped).
		Return(&models.Order{Id: "order-1", OrderStatus: models.OrderShipped}, nil).Once()
	f.ledger.On("UpdateOrderStatus", mock.Anything, "order-1", models.OrderProcessing).
		Return(nil, store.ErrInvalidStatusTransition).Once()

	rr := f.do(t, http.MethodPatch, "/v1/orders/order-1/status", map[string]string{"order_status": "shipped"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPatch, "/v1/orders/order-1/status", map[string]string{"order_status": "processing"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	f.ledger.AssertExpectations(t)
}

func TestHandler_Queries(t *testing.T) {
	f := newFixture()
	f.ledger.On("GetBuyerOrders", mock.Anything, "buyer-1", 5, 10).Return([]models.Order{{Id: "order-1"}}, nil).Once()
	f.ledger.On("GetSellerEarnings", mock.Anything, "seller-a", 0, 0).
		Return(&models.SellerEarnings{SellerId: "seller-a", TotalEarnings: decimal.RequireFromString("90")}, nil).Once()
	f.ledger.On("GetPlatformRevenue", mock.Anything).
		Return(&models.PlatformRevenueReport{Total: decimal.RequireFromString("15"), Reconciled: true}, nil).Once()

	rr := f.do(t, http.MethodGet, "/v1/buyers/buyer-1/orders?limit=5&offset=10", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/sellers/seller-a/earnings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var earnings models.SellerEarnings
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&earnings))
	assert.True(t, earnings.TotalEarnings.Equal(decimal.RequireFromString("90")))

	rr = f.do(t, http.MethodGet, "/v1/platform/revenue", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	f.ledger.AssertExpectations(t)
}

func TestHandler_Cart(t *testing.T) {
	f := newFixture()
	params := store.CartItemParams{
		UserId:    "buyer-1",
		ProductId: "widget",
		SellerId:  "seller-a",
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("19.99"),
	}
	f.ledger.On("AddCartItem", mock.Anything, mock.MatchedBy(func(p store.CartItemParams) bool {
		return p.UserId == params.UserId && p.SellerId == params.SellerId &&
			p.Quantity == params.Quantity && p.UnitPrice.Equal(params.UnitPrice)
	})).Return(&models.CartItem{Id: "item-1"}, nil).Once()
	f.ledger.On("GetCart", mock.Anything, "buyer-1").Return([]models.CartItem{{Id: "item-1"}}, nil).Once()

	rr := f.do(t, http.MethodPost, "/v1/carts/buyer-1/items", map[string]any{
		"product_id": "widget",
		"seller_id":  "seller-a",
		"quantity":   2,
		"unit_price": "19.99",
	})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(t, http.MethodGet, "/v1/carts/buyer-1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	f.ledger.AssertExpectations(t)
}

func TestHandler_Health(t *testing.T) {
	f := newFixture()
	f.ledger.On("HealthCheck", mock.Anything).Return(nil).Once()
	f.ledger.On("HealthCheck", mock.Anything).Return(errors.New("down")).Once()

	rr := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
