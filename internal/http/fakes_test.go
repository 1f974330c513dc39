package http

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"github.com/sagaasachin/MaanClothing/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

type fakeCatalog struct {
	products []domain.Product
	filter   domain.ProductFilter
	err      error
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	f.filter = filter
	return f.products, f.err
}

func (f *fakeCatalog) GetProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

type fakeProfile struct {
	profile *domain.Profile
	req     service.ProfileRequest
	err     error
}

func (f *fakeProfile) GetProfile(_ context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil || f.profile.ID != userID {
		return nil, repository.ErrUserNotFound
	}
	return f.profile, nil
}

func (f *fakeProfile) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req service.ProfileRequest) (*domain.Profile, error) {
	f.req = req
	p, err := f.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	p.DOB = req.DOB
	return p, nil
}

type cartCall struct {
	op        string
	userID    primitive.ObjectID
	productID primitive.ObjectID
	quantity  int
}

type fakeCart struct {
	mu    sync.Mutex
	view  *domain.CartView
	err   error
	calls []cartCall
}

func (f *fakeCart) record(c cartCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeCart) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.CartView, error) {
	if f.view != nil {
		return f.view, nil
	}
	return &domain.CartView{UserID: userID, Lines: []domain.CartLine{}, Subtotal: decimal.Zero}, nil
}

func (f *fakeCart) AddItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	return f.record(cartCall{"add", userID, productID, quantity})
}

func (f *fakeCart) SetQuantity(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	return f.record(cartCall{"set", userID, productID, quantity})
}

func (f *fakeCart) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) error {
	return f.record(cartCall{"remove", userID, productID, 0})
}

func (f *fakeCart) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	return f.record(cartCall{"clear", userID, primitive.NilObjectID, 0})
}

type fakeWishlist struct {
	in      bool
	err     error
	removed []primitive.ObjectID
}

func (f *fakeWishlist) GetWishlist(_ context.Context, userID primitive.ObjectID) (*domain.WishlistView, error) {
	return &domain.WishlistView{UserID: userID, Products: []domain.Product{}}, nil
}

func (f *fakeWishlist) ToggleItem(_ context.Context, _, _ primitive.ObjectID) (bool, error) {
	f.in = !f.in
	return f.in, f.err
}

func (f *fakeWishlist) AddItem(_ context.Context, _, _ primitive.ObjectID) error {
	return f.err
}

func (f *fakeWishlist) RemoveItem(_ context.Context, _, productID primitive.ObjectID) error {
	f.removed = append(f.removed, productID)
	return f.err
}

type fakeCheckout struct {
	req   service.CheckoutRequest
	order *domain.Order
	err   error
}

func (f *fakeCheckout) PlaceOrder(_ context.Context, userID primitive.ObjectID, req service.CheckoutRequest) (*domain.Order, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	if f.order != nil {
		return f.order, nil
	}
	return &domain.Order{ID: primitive.NewObjectID(), UserID: userID, Status: domain.OrderStatusProcessing}, nil
}

type fakeOrders struct {
	orders []domain.Order
	page   domain.Page
	err    error
}

func (f *fakeOrders) ListOrders(_ context.Context, _ primitive.ObjectID, page domain.Page) ([]domain.Order, error) {
	f.page = page
	return f.orders, f.err
}

func (f *fakeOrders) GetOrder(_ context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == userID {
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}
