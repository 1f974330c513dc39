package service

import (
	"context"
	"sort"
	"sync"

	"github.com/sagaasachin/MaanClothing/internal/cache"
	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProducts implements repository.ProductRepository in memory
type MockProducts struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]domain.Product
}

func newMockProducts(products ...domain.Product) *MockProducts {
	m := &MockProducts{products: map[primitive.ObjectID]domain.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProducts) remove(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

func product(name string, price int64, stock int) domain.Product {
	return domain.Product{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}
}

func (m *MockProducts) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockProducts) Get(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (m *MockProducts) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[primitive.ObjectID]domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *MockProducts) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	m.products[id] = p
	return nil
}

func (m *MockProducts) Upsert(_ context.Context, products []domain.Product) (*repository.UpsertResult, error) {
	return &repository.UpsertResult{Inserted: int64(len(products))}, nil
}

func (m *MockProducts) stock(id primitive.ObjectID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products[id].Stock
}

// MockCarts implements repository.CartRepository in memory
type MockCarts struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]*domain.Cart
	gets  int
	err   error
}

func newMockCarts() *MockCarts {
	return &MockCarts{carts: map[primitive.ObjectID]*domain.Cart{}}
}

func (m *MockCarts) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem{}, c.Items...)
	return &cp, nil
}

func (m *MockCarts) AddItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		c = &domain.Cart{UserID: userID}
		m.carts[userID] = c
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	return nil
}

func (m *MockCarts) SetQuantity(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *MockCarts) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	return nil
}

func (m *MockCarts) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		c.Items = []domain.CartItem{}
	}
	return nil
}

func (m *MockCarts) getCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

// MockWishlists implements repository.WishlistRepository in memory
type MockWishlists struct {
	mu    sync.Mutex
	lists map[primitive.ObjectID][]primitive.ObjectID
}

func newMockWishlists() *MockWishlists {
	return &MockWishlists{lists: map[primitive.ObjectID][]primitive.ObjectID{}}
}

func (m *MockWishlists) GetWishlist(_ context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.Wishlist{UserID: userID, Products: append([]primitive.ObjectID{}, m.lists[userID]...)}, nil
}

func (m *MockWishlists) Toggle(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range m.lists[userID] {
		if id == productID {
			m.lists[userID] = append(m.lists[userID][:i], m.lists[userID][i+1:]...)
			return false, nil
		}
	}
	m.lists[userID] = append(m.lists[userID], productID)
	return true, nil
}

func (m *MockWishlists) Add(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.lists[userID] {
		if id == productID {
			return nil
		}
	}
	m.lists[userID] = append(m.lists[userID], productID)
	return nil
}

func (m *MockWishlists) Remove(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.lists[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	kept := list[:0]
	for _, id := range list {
		if id != productID {
			kept = append(kept, id)
		}
	}
	m.lists[userID] = kept
	return nil
}

// MockProfiles implements repository.ProfileRepository in memory
type MockProfiles struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]domain.Profile
	last     domain.ProfileUpdate
}

func newMockProfiles(profiles ...domain.Profile) *MockProfiles {
	m := &MockProfiles{profiles: map[primitive.ObjectID]domain.Profile{}}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *MockProfiles) GetProfile(_ context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &p, nil
}

func (m *MockProfiles) UpdateProfile(_ context.Context, userID primitive.ObjectID, upd domain.ProfileUpdate) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = upd
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.Gender != nil {
		p.Gender = *upd.Gender
	}
	if upd.DOB != nil {
		p.DOB = upd.DOB
	}
	if upd.Addresses != nil {
		p.Addresses = upd.Addresses
	}
	m.profiles[userID] = p
	return &p, nil
}

// MockOrders implements repository.OrderRepository in memory
type MockOrders struct {
	mu     sync.RWMutex
	orders []domain.Order
	// dupOnCreate makes Create fail as if another request won the key
	dupOnCreate *domain.Order
}

func (m *MockOrders) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dupOnCreate != nil {
		m.orders = append(m.orders, *m.dupOnCreate)
		m.dupOnCreate = nil
		return repository.ErrDuplicateOrder
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	m.orders = append(m.orders, *order)
	return nil
}

func (m *MockOrders) ListByUser(_ context.Context, userID primitive.ObjectID, page domain.Page) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	start := int(page.Skip())
	if start >= len(out) {
		return []domain.Order{}, nil
	}
	end := start + page.Size
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (m *MockOrders) Get(_ context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == orderID && o.UserID == userID {
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *MockOrders) FindByIdempotencyKey(_ context.Context, userID primitive.ObjectID, key string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return &o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *MockOrders) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// MockOutbox implements repository.OutboxRepository in memory
type MockOutbox struct {
	mu     sync.Mutex
	events []domain.OutboxEvent
}

func (m *MockOutbox) Enqueue(_ context.Context, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *MockOutbox) GetUnprocessedEvents(_ context.Context, _ int) ([]domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutboxEvent{}, m.events...), nil
}

func (m *MockOutbox) MarkEventAsProcessed(_ context.Context, _ primitive.ObjectID) error {
	return nil
}

// fakeTx runs fn directly; the mocks have no rollback.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// MockCache implements cache.CartCache in memory with the same generation
// check as the Redis cache.
type MockCache struct {
	mu      sync.Mutex
	carts   map[primitive.ObjectID]*domain.Cart
	gens    map[primitive.ObjectID]int64
	deletes int
	stale   int
}

func newMockCache() *MockCache {
	return &MockCache{
		carts: map[primitive.ObjectID]*domain.Cart{},
		gens:  map[primitive.ObjectID]int64{},
	}
}

func (m *MockCache) Get(_ context.Context, userID primitive.ObjectID) (*domain.Cart, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, m.gens[userID], cache.ErrCacheMiss
	}
	return c, m.gens[userID], nil
}

func (m *MockCache) Set(_ context.Context, userID primitive.ObjectID, cart *domain.Cart, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[userID] != version {
		m.stale++
		return cache.ErrStale
	}
	m.carts[userID] = cart
	return nil
}

func (m *MockCache) Delete(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	m.gens[userID]++
	m.deletes++
	return nil
}

func (m *MockCache) has(userID primitive.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[userID]
	return ok
}
