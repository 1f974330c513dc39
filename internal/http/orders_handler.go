package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, req service.CheckoutRequest) (*domain.Order, error)
}

type OrderService interface {
	ListOrders(ctx context.Context, userID primitive.ObjectID, page domain.Page) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error)
}

type OrdersHandler struct {
	checkout CheckoutService
	orders   OrderService
	timeout  time.Duration
}

func NewOrdersHandler(checkout CheckoutService, orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		checkout: checkout,
		orders:   orders,
		timeout:  timeout,
	}
}

// POST /api/user/orders
func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PlaceOrderRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.checkout.PlaceOrder(ctx, userID, service.CheckoutRequest{
		Address:        req.Address,
		PaymentType:    domain.PaymentType(req.PaymentType),
		UpiID:          req.UpiID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// GET /api/user/orders/my-orders?page=&limit=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	page, ok := pageFromQuery(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(ctx, userID, page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders, Page: page.Number, Limit: page.Size})
}

// GET /api/user/orders/{orderId}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := objectIDParam(w, r, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func pageFromQuery(w http.ResponseWriter, r *http.Request) (domain.Page, bool) {
	var page domain.Page
	q := r.URL.Query()
	for name, dst := range map[string]*int{"page": &page.Number, "limit": &page.Size} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid_argument", name+" must be a positive integer")
			return domain.Page{}, false
		}
		if name == "page" && n > domain.MaxPageNumber {
			respondError(w, http.StatusBadRequest, "invalid_argument",
				fmt.Sprintf("page must be at most %d", domain.MaxPageNumber))
			return domain.Page{}, false
		}
		*dst = n
	}
	return page.Normalize(), true
}
