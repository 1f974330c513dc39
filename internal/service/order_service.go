package service

import (
	"context"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService is the read side of the order ledger. Orders are only ever
// written by CheckoutService.
type OrderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID, page domain.Page) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, page.Normalize())
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error) {
	return s.orders.Get(ctx, userID, orderID)
}
