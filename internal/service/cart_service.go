package service

import (
	"context"
	"errors"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/cache"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cartLoadTimeout = 5 * time.Second

type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository, c cache.CartCache) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    c,
	}
}

// GetCart returns the cart joined against current product data. A user who
// never added anything gets an empty cart.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.CartView, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.GetMany(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	if missing := len(cart.Items) - len(products); missing > 0 {
		logger.FromContext(ctx).Warn("cart references missing products",
			zap.String("user_id", userID.Hex()), zap.Int("missing", missing))
	}

	return domain.NewCartView(cart, products), nil
}

// loadCart is shared by concurrent readers of the same cart, so it runs on a
// context detached from any single caller. Each caller still stops waiting
// when its own context ends.
func (s *CartService) loadCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	ch := s.sfg.DoChan(userID.Hex(), func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cartLoadTimeout)
		defer cancel()
		return s.fetchCart(loadCtx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Cart), nil
	}
}

func (s *CartService) fetchCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	log := logger.FromContext(ctx)

	cart, version, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	// Only a clean miss gives a version that is safe to fill.
	fill := errors.Is(err, cache.ErrCacheMiss)
	if !fill {
		log.Warn("cache get error", zap.Error(err))
	}

	cart, err = s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	if fill {
		errSet := s.cache.Set(ctx, userID, cart, version)
		switch {
		case errors.Is(errSet, cache.ErrStale):
			log.Debug("cart changed during load, not cached", zap.String("user_id", userID.Hex()))
		case errSet != nil:
			log.Warn("cache set error", zap.Error(errSet))
		}
	}
	return cart, nil
}

// AddItem merges quantity into the entry for productID, creating the entry
// and the cart as needed. The product must exist.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	if quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}

	if err := s.repo.AddItem(ctx, userID, productID, quantity); err != nil {
		logger.FromContext(ctx).Error("repo add item error", zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *CartService) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	if quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}

	if err := s.repo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if !errors.Is(err, repository.ErrItemNotFound) {
			logger.FromContext(ctx).Error("repo update item quantity error", zap.Error(err))
		}
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			logger.FromContext(ctx).Error("repo remove item error", zap.Error(err))
		}
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		logger.FromContext(ctx).Error("repo clear cart error", zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *CartService) Invalidate(ctx context.Context, userID primitive.ObjectID) {
	s.invalidateCache(ctx, userID)
}

func (s *CartService) invalidateCache(ctx context.Context, userID primitive.ObjectID) {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(delCtx, userID); err != nil {
		logger.FromContext(ctx).Warn("cache invalidate error", zap.Error(err))
	}
}
