package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.CartView, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type CartHandler struct {
	cart    CartService
	timeout time.Duration
}

func NewCartHandler(cart CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
	}
}

// GET /api/user/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	h.respondCart(ctx, w, r, userID)
}

// POST /api/user/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	productID, _ := primitive.ObjectIDFromHex(req.ProductID)
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.cart.AddItem(ctx, userID, productID, quantity); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, userID)
}

// PUT /api/user/cart/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := objectIDParam(w, r, "productId")
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.cart.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, userID)
}

// DELETE /api/user/cart/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := objectIDParam(w, r, "productId")
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(ctx, userID, productID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, userID)
}

// DELETE /api/user/cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.cart.ClearCart(ctx, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, userID)
}

// respondCart answers every cart call with the fresh cart, so the client
// can replace its local copy.
func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) {
	view, err := h.cart.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
