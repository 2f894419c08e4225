package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/modarent/rental-orders/internal/inventory"
	"github.com/modarent/rental-orders/internal/orders"
)

type OrdersHandler struct {
	Service *orders.Service
	Log     *zap.Logger
}

type createOrderReq struct {
	UserID  string         `json:"userId"`
	Items   []orders.Item  `json:"items"`
	Address orders.Address `json:"address"`
}

type verifyReq struct {
	UserID           string `json:"userId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewaySignature string `json:"gatewaySignature"`
}

type userOrdersReq struct {
	UserID string `json:"userId"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/order/gateway", h.createOrder)
	r.Post("/api/order/verifyGateway", h.verifyPayment)
	r.Post("/api/order/userorders", h.userOrders)
	r.Get("/api/order/status/{id}", h.orderStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "message": msg})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.CreateOrder(ctx, req.UserID, req.Items, req.Address)
	if err != nil {
		var unavailable *inventory.UnavailableError
		switch {
		case errors.As(err, &unavailable):
			writeFailure(w, http.StatusConflict, unavailable.Error())
		case errors.Is(err, orders.ErrInvalidInput):
			writeFailure(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, orders.ErrGateway):
			writeFailure(w, http.StatusBadGateway, "payment gateway error")
		default:
			h.Log.Error("create order", zap.Error(err))
			writeFailure(w, http.StatusInternalServerError, "order creation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order": map[string]any{
			"id":       res.Intent.ID,
			"amount":   res.Intent.Amount,
			"currency": res.Intent.Currency,
		},
		"orderId": res.Order.ID,
	})
}

func (h *OrdersHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Service.ConfirmPayment(ctx, req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrMissingFields):
			writeFailure(w, http.StatusBadRequest, "missing payment fields")
		case errors.Is(err, orders.ErrInvalidSignature):
			writeFailure(w, http.StatusBadRequest, "invalid signature")
		case errors.Is(err, orders.ErrNotFound):
			writeFailure(w, http.StatusNotFound, "order not found")
		case errors.Is(err, orders.ErrPaidUnfulfilled):
			// Payment is real, fulfillment is not. Surfaced as its own
			// state so support can refund or restock by hand.
			writeFailure(w, http.StatusConflict, err.Error())
		case errors.Is(err, orders.ErrInvalidInput):
			writeFailure(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("verify payment", zap.Error(err))
			writeFailure(w, http.StatusInternalServerError, "payment verification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

func (h *OrdersHandler) userOrders(w http.ResponseWriter, r *http.Request) {
	var req userOrdersReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Service.ListOrdersForUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, orders.ErrInvalidInput) {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("list user orders", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": out})
}

func (h *OrdersHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeFailure(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Service.GetOrderStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "order not found")
			return
		}
		h.Log.Error("order status", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "could not load status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": st})
}
