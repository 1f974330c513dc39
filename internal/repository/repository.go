package repository

import (
	"context"
	"errors"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductsCollection = "products"
	UsersCollection    = "users"
	OrdersCollection   = "orders"
	OutboxCollection   = "outbox"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("concurrent modification conflict")
	ErrDuplicateOrder    = errors.New("order with this idempotency key already exists")
)

// ProductRepository is the read side of the catalog plus the two writes the
// storefront needs: checkout stock decrement and bulk import.
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	Upsert(ctx context.Context, products []domain.Product) (*UpsertResult, error)
}

type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type WishlistRepository interface {
	GetWishlist(ctx context.Context, userID primitive.ObjectID) (*domain.Wishlist, error)
	Toggle(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd domain.ProfileUpdate) (*domain.Profile, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, page domain.Page) ([]domain.Order, error)
	Get(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID primitive.ObjectID, key string) (*domain.Order, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event *domain.OutboxEvent) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id primitive.ObjectID) error
}

// TxRunner runs fn inside one database transaction. Every repository call
// made with the ctx handed to fn takes part in it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UpsertResult struct {
	Inserted int64
	Updated  int64
}
