package service

import (
	"context"
	"errors"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type WishlistService struct {
	repo     repository.WishlistRepository
	products repository.ProductRepository
}

func NewWishlistService(repo repository.WishlistRepository, products repository.ProductRepository) *WishlistService {
	return &WishlistService{repo: repo, products: products}
}

func (s *WishlistService) GetWishlist(ctx context.Context, userID primitive.ObjectID) (*domain.WishlistView, error) {
	w, err := s.repo.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.GetMany(ctx, w.Products)
	if err != nil {
		return nil, err
	}
	if missing := len(w.Products) - len(products); missing > 0 {
		logger.FromContext(ctx).Warn("wishlist references missing products",
			zap.String("user_id", userID.Hex()), zap.Int("missing", missing))
	}

	return domain.NewWishlistView(w, products), nil
}

// ToggleItem adds productID when absent and removes it when present. The
// result reports membership after the toggle. A product that left the
// catalog can still be toggled out, never in.
func (s *WishlistService) ToggleItem(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	_, err := s.products.Get(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		w, errList := s.repo.GetWishlist(ctx, userID)
		if errList != nil || !w.Contains(productID) {
			return false, err
		}
		return false, s.repo.Remove(ctx, userID, productID)
	}
	if err != nil {
		return false, err
	}
	return s.repo.Toggle(ctx, userID, productID)
}

func (s *WishlistService) AddItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.repo.Remove(ctx, userID, productID)
}
