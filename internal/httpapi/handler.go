package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Settler settles a pending order.
type Settler interface {
	Settle(ctx context.Context, orderId, paymentMethod string) (*models.SettlementResult, error)
}

// CartCheckout materializes a buyer's cart into an order.
type CartCheckout interface {
	CheckoutCart(ctx context.Context, buyerId string, shipping models.Address, billing *models.Address, paymentMethod string) (*models.Order, error)
}

// Ledger is the query and fulfillment surface exposed over HTTP.
type Ledger interface {
	HealthCheck(ctx context.Context) error
	GetOrderDetail(ctx context.Context, orderId string) (*models.OrderDetail, error)
	GetBuyerOrders(ctx context.Context, buyerId string, limit, offset int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderId string, next models.OrderStatus) (*models.Order, error)
	GetSellerEarnings(ctx context.Context, sellerId string, limit, offset int) (*models.SellerEarnings, error)
	GetPlatformRevenue(ctx context.Context) (*models.PlatformRevenueReport, error)
	AddCartItem(ctx context.Context, params store.CartItemParams) (*models.CartItem, error)
	GetCart(ctx context.Context, buyerId string) ([]models.CartItem, error)
}

type Handler struct {
	checkout CartCheckout
	settler  Settler
	ledger   Ledger
}

func NewHandler(checkout CartCheckout, settler Settler, ledger Ledger) *Handler {
	return &Handler{checkout: checkout, settler: settler, ledger: ledger}
}

type checkoutRequest struct {
	BuyerId         string          `json:"buyer_id"`
	ShippingAddress models.Address  `json:"shipping_address"`
	BillingAddress  *models.Address `json:"billing_address,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
}

type settleRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type statusRequest struct {
	OrderStatus models.OrderStatus `json:"order_status"`
}

type cartItemRequest struct {
	ProductId string          `json:"product_id"`
	SellerId  string          `json:"seller_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.HealthCheck(r.Context()); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BuyerId == "" {
		respondWithError(w, http.StatusBadRequest, "buyer_id is required")
		return
	}

	order, err := h.checkout.CheckoutCart(r.Context(), req.BuyerId, req.ShippingAddress, req.BillingAddress, req.PaymentMethod)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, order)
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	orderId := chi.URLParam(r, "id")

	var req settleRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ctx := models.WithSettlementContext(r.Context(), &models.SettlementContext{
		Origin:    models.OriginHTTP,
		RequestId: middleware.GetReqID(r.Context()),
	})
	result, err := h.settler.Settle(ctx, orderId, req.PaymentMethod)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.ledger.GetOrderDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.ledger.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.OrderStatus)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) GetBuyerOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	orders, err := h.ledger.GetBuyerOrders(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetSellerEarnings(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	earnings, err := h.ledger.GetSellerEarnings(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, earnings)
}

func (h *Handler) GetPlatformRevenue(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.GetPlatformRevenue(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.ledger.AddCartItem(r.Context(), store.CartItemParams{
		UserId:    chi.URLParam(r, "buyer_id"),
		ProductId: req.ProductId,
		SellerId:  req.SellerId,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.GetCart(r.Context(), chi.URLParam(r, "buyer_id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	code := mapErrorToStatusCode(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.Int("status", code), zap.Error(err))
	}
	respondWithError(w, code, err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		zap.L().Warn("Failed to write JSON response", zap.Error(err))
	}
}

func mapErrorToStatusCode(err error) int {
	var pe *store.PersistenceError
	switch {
	case errors.Is(err, store.ErrEmptyCart),
		errors.Is(err, store.ErrEmptySettlement),
		errors.Is(err, store.ErrInvalidCartLine),
		errors.Is(err, store.ErrInvalidSellerReference):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadySettled),
		errors.Is(err, store.ErrInvalidStatusTransition),
		errors.Is(err, store.ErrInvalidPaymentState):
		return http.StatusConflict
	case errors.As(err, &pe):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
