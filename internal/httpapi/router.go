package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/checkout", h.Checkout)

		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Post("/settle", h.Settle)
			r.Patch("/status", h.UpdateOrderStatus)
		})

		r.Get("/buyers/{id}/orders", h.GetBuyerOrders)
		r.Get("/sellers/{id}/earnings", h.GetSellerEarnings)
		r.Get("/platform/revenue", h.GetPlatformRevenue)

		r.Get("/carts/{buyer_id}", h.GetCart)
		r.Post("/carts/{buyer_id}/items", h.AddCartItem)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
