package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CheckoutRequest struct {
	Address        string             `json:"address" validate:"required,max=500"`
	PaymentType    domain.PaymentType `json:"paymentType" validate:"required,oneof=cash gpay paytm card"`
	UpiID          string             `json:"upiId" validate:"max=100"`
	IdempotencyKey string             `json:"-" validate:"max=128"`
}

// cartInvalidator is the part of CartService checkout needs.
type cartInvalidator interface {
	Invalidate(ctx context.Context, userID primitive.ObjectID)
}

type CheckoutService struct {
	tx           repository.TxRunner
	carts        repository.CartRepository
	products     repository.ProductRepository
	orders       repository.OrderRepository
	outbox       repository.OutboxRepository
	cartCache    cartInvalidator
	validate     *validator.Validate
	deliveryDays int
	now          func() time.Time
}

type CheckoutDeps struct {
	Tx           repository.TxRunner
	Carts        repository.CartRepository
	Products     repository.ProductRepository
	Orders       repository.OrderRepository
	Outbox       repository.OutboxRepository
	CartCache    cartInvalidator
	DeliveryDays int
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	days := deps.DeliveryDays
	if days == 0 {
		days = domain.DefaultDeliveryDays
	}
	return &CheckoutService{
		tx:           deps.Tx,
		carts:        deps.Carts,
		products:     deps.Products,
		orders:       deps.Orders,
		outbox:       deps.Outbox,
		cartCache:    deps.CartCache,
		validate:     newValidator(),
		deliveryDays: days,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder turns the user's cart into an order. Stock decrement, order
// insert, cart clear and the OrderPlaced outbox event commit together or
// not at all. A repeated IdempotencyKey returns the order created the first
// time.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest) (*domain.Order, error) {
	log := logger.FromContext(ctx)
	req.Address = strings.TrimSpace(req.Address)
	req.UpiID = strings.TrimSpace(req.UpiID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	if req.IdempotencyKey != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err == nil {
			log.Info("duplicate checkout request", zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing.ID.Hex()))
			return existing, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
	}

	var order *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.carts.GetCart(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}

		if err := s.validateRequest(req); err != nil {
			return err
		}

		snapshot, err := s.snapshotCart(ctx, cart)
		if err != nil {
			return err
		}

		for _, line := range snapshot {
			if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("product %s: %w", line.ProductID.Hex(), err)
			}
		}

		order = s.newOrder(userID, req, snapshot)
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		if err := s.carts.ClearCart(ctx, userID); err != nil {
			return err
		}
		return s.enqueueOrderPlaced(ctx, order)
	})

	if errors.Is(err, repository.ErrDuplicateOrder) {
		// lost a race with a concurrent request carrying the same key
		return s.orders.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
	}
	if err != nil {
		return nil, err
	}

	s.cartCache.Invalidate(ctx, userID)
	log.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Products)))
	return order, nil
}

func (s *CheckoutService) validateRequest(req CheckoutRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fieldError(err, nil)
	}
	if req.PaymentType.RequiresUPI() && req.UpiID == "" {
		return invalid("upiId", "required for %s payments", req.PaymentType)
	}
	return nil
}

// snapshotCart copies name and current unit price of every cart product.
func (s *CheckoutService) snapshotCart(ctx context.Context, cart *domain.Cart) ([]domain.OrderProduct, error) {
	products, err := s.products.GetMany(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}

	snapshot := make([]domain.OrderProduct, 0, len(cart.Items))
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", item.ProductID.Hex(), repository.ErrProductNotFound)
		}
		snapshot = append(snapshot, domain.OrderProduct{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice(),
			Quantity:  item.Quantity,
			Image:     p.ImageURL,
		})
	}
	return snapshot, nil
}

func (s *CheckoutService) newOrder(userID primitive.ObjectID, req CheckoutRequest, snapshot []domain.OrderProduct) *domain.Order {
	now := s.now()
	order := &domain.Order{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		Products:         snapshot,
		TotalAmount:      domain.TotalOf(snapshot),
		Currency:         domain.Currency,
		Address:          req.Address,
		PaymentType:      req.PaymentType,
		Status:           domain.OrderStatusProcessing,
		ExpectedDelivery: now.AddDate(0, 0, s.deliveryDays),
		IdempotencyKey:   req.IdempotencyKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.PaymentType.RequiresUPI() {
		order.UpiID = req.UpiID
	}
	return order
}

func (s *CheckoutService) enqueueOrderPlaced(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(domain.NewOrderPlacedPayload(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order payload: %w", err)
	}

	return s.outbox.Enqueue(ctx, &domain.OutboxEvent{
		AggregateID: order.ID.Hex(),
		EventType:   domain.EventOrderPlaced,
		Payload:     payload,
		CreatedAt:   order.CreatedAt,
	})
}
