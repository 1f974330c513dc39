package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistService interface {
	GetWishlist(ctx context.Context, userID primitive.ObjectID) (*domain.WishlistView, error)
	ToggleItem(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
}

type WishlistHandler struct {
	wishlist WishlistService
	timeout  time.Duration
}

func NewWishlistHandler(wishlist WishlistService, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wishlist,
		timeout:  timeout,
	}
}

// GET /api/user/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	h.respondWishlist(ctx, w, r, userID)
}

// POST /api/user/wishlist/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req WishlistItemRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	productID, _ := primitive.ObjectIDFromHex(req.ProductID)

	in, err := h.wishlist.ToggleItem(ctx, userID, productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ToggleWishlistResponse{ProductID: productID.Hex(), InWishlist: in})
}

// POST /api/user/wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req WishlistItemRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	productID, _ := primitive.ObjectIDFromHex(req.ProductID)

	if err := h.wishlist.AddItem(ctx, userID, productID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondWishlist(ctx, w, r, userID)
}

// DELETE /api/user/wishlist/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	if err := h.wishlist.RemoveItem(ctx, userID, productID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondWishlist(ctx, w, r, userID)
}

func (h *WishlistHandler) respondWishlist(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) {
	view, err := h.wishlist.GetWishlist(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
