package service_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var errInjected = errors.New("injected failure")

// memState is everything a memStore keeps; it is copied whole for rollback.
type memState struct {
	carts    map[string]domain.Cart
	lines    []domain.CartLine
	products map[uuid.UUID]domain.Product
	orders   []domain.Order
}

func (s memState) clone() memState {
	return memState{
		carts:    maps.Clone(s.carts),
		lines:    slices.Clone(s.lines),
		products: maps.Clone(s.products),
		orders:   slices.Clone(s.orders),
	}
}

// memStore is an in-memory store with all-or-nothing transactions.
// Transactions are serialized, like row locks on a single cart or order.
type memStore struct {
	mu     sync.Mutex
	state  memState
	failOn map[string]error
	clock  time.Time
	txs    int
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			carts:    map[string]domain.Cart{},
			products: map[uuid.UUID]domain.Product{},
		},
		failOn: map[string]error{},
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "memStore.WithinTx", Err: err}
	}

	s.txs++
	snapshot := s.state.clone()

	if err := fn(ctx, memRepos{s: s}); err != nil {
		s.state = snapshot
		if domain.IsKnown(err) {
			return err
		}
		return &domain.PersistenceError{Op: "memStore.WithinTx", Err: err}
	}

	return nil
}

func (s *memStore) fail(op string) error {
	if err, ok := s.failOn[op]; ok {
		return err
	}
	return nil
}

func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Locked accessors for tests and for repositories used outside a transaction.

func (s *memStore) carts() port.CartRepository {
	return lockedCarts{s: s}
}

func (s *memStore) orders() port.OrderRepository {
	return lockedOrders{s: s}
}

func (s *memStore) addProduct(name, price string, stock int) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: domain.NewMoney(decimal.RequireFromString(price), currency.USD),
		Stock: stock,
	}
	s.state.products[p.ID] = p
	return p
}

func (s *memStore) deleteProduct(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.products, id)
}

func (s *memStore) product(id uuid.UUID) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	return p, ok
}

// seedLine inserts a raw cart line without merging, to model legacy duplicate rows.
func (s *memStore) seedLine(ownerID string, productID uuid.UUID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := memRepos{s: s}.ensureCart(ownerID)
	s.state.lines = append(s.state.lines, domain.CartLine{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: s.now(),
	})
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

func (s *memStore) failAt(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

// memRepos works on the store state and expects the caller to hold the lock.
type memRepos struct {
	s *memStore
}

func (r memRepos) Carts() port.CartRepository      { return memCarts(r) }
func (r memRepos) Catalog() port.CatalogRepository { return memCatalog(r) }
func (r memRepos) Orders() port.OrderRepository    { return memOrders(r) }

func (r memRepos) ensureCart(ownerID string) domain.Cart {
	cart, ok := r.s.state.carts[ownerID]
	if !ok {
		cart = domain.Cart{ID: uuid.New(), OwnerID: ownerID, CreatedAt: r.s.now()}
		r.s.state.carts[ownerID] = cart
	}
	return cart
}

type memCarts memRepos

func (r memCarts) withLines(cart domain.Cart) domain.Cart {
	for _, line := range r.s.state.lines {
		if line.CartID == cart.ID {
			cart.Lines = append(cart.Lines, line)
		}
	}
	return cart
}

func (r memCarts) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ValidationErrorf("ownerID is empty")
	}
	cart, ok := r.s.state.carts[ownerID]
	if !ok {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	return r.withLines(cart), nil
}

func (r memCarts) GetOrCreateCart(_ context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ValidationErrorf("ownerID is empty")
	}
	return r.withLines(memRepos(r).ensureCart(ownerID)), nil
}

func (r memCarts) LockCart(ctx context.Context, ownerID string) (domain.Cart, bool, error) {
	if err := r.s.fail("carts.LockCart"); err != nil {
		return domain.Cart{}, false, err
	}
	cart, err := r.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, false, err
	}
	return cart, cart.Exists(), nil
}

func (r memCarts) AddLine(_ context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}
	for i, line := range r.s.state.lines {
		if line.CartID == cartID && line.ProductID == productID {
			line.Quantity += quantity
			line.UpdatedAt = r.s.now()
			r.s.state.lines[i] = line
			return line, nil
		}
	}
	line := domain.CartLine{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: r.s.now(),
	}
	r.s.state.lines = append(r.s.state.lines, line)
	return line, nil
}

func (r memCarts) GetLine(_ context.Context, lineID uuid.UUID) (domain.CartLine, error) {
	for _, line := range r.s.state.lines {
		if line.ID == lineID {
			return line, nil
		}
	}
	return domain.CartLine{}, domain.ErrCartLineNotFound
}

func (r memCarts) SetLineQuantity(_ context.Context, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}
	for i, line := range r.s.state.lines {
		if line.ID == lineID {
			line.Quantity = quantity
			r.s.state.lines[i] = line
			return line, nil
		}
	}
	return domain.CartLine{}, domain.ErrCartLineNotFound
}

func (r memCarts) RemoveLine(_ context.Context, lineID uuid.UUID) (bool, error) {
	before := len(r.s.state.lines)
	r.s.state.lines = slices.DeleteFunc(r.s.state.lines, func(line domain.CartLine) bool {
		return line.ID == lineID
	})
	return len(r.s.state.lines) < before, nil
}

func (r memCarts) Clear(_ context.Context, cartID uuid.UUID) (int64, error) {
	if err := r.s.fail("carts.Clear"); err != nil {
		return 0, err
	}
	before := len(r.s.state.lines)
	r.s.state.lines = slices.DeleteFunc(r.s.state.lines, func(line domain.CartLine) bool {
		return line.CartID == cartID
	})
	return int64(before - len(r.s.state.lines)), nil
}

type memCatalog memRepos

func (r memCatalog) GetProduct(_ context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := r.s.state.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	return p, nil
}

func (r memCatalog) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	for _, p := range r.s.state.products {
		if filter.Category == "" || p.Category == filter.Category {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r memCatalog) CreateProduct(_ context.Context, product domain.Product) (domain.Product, error) {
	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = r.s.now()
	r.s.state.products[product.ID] = product
	return product, nil
}

func (r memCatalog) UpdateProduct(_ context.Context, product domain.Product) (domain.Product, error) {
	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	if _, ok := r.s.state.products[product.ID]; !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	r.s.state.products[product.ID] = product
	return product, nil
}

func (r memCatalog) DeleteProduct(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.s.state.products[id]
	delete(r.s.state.products, id)
	return ok, nil
}

func (r memCatalog) AdjustStock(_ context.Context, id uuid.UUID, delta int) (bool, error) {
	if err := r.s.fail("catalog.AdjustStock"); err != nil {
		return false, err
	}
	p, ok := r.s.state.products[id]
	if !ok {
		return false, nil
	}
	p.Stock += delta
	r.s.state.products[id] = p
	return true, nil
}

type memOrders memRepos

func (r memOrders) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	if err := order.Validate(); err != nil {
		return domain.Order{}, err
	}
	if err := r.s.fail("orders.CreateOrder"); err != nil {
		return domain.Order{}, err
	}
	order.CreatedAt = r.s.now()
	order.UpdatedAt = order.CreatedAt
	r.s.state.orders = append(r.s.state.orders, order)
	return order, nil
}

func (r memOrders) find(id uuid.UUID) (int, error) {
	for i, o := range r.s.state.orders {
		if o.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
}

func (r memOrders) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	i, err := r.find(id)
	if err != nil {
		return domain.Order{}, err
	}
	return r.s.state.orders[i], nil
}

func (r memOrders) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r memOrders) ListOrdersByUser(_ context.Context, ownerID string) ([]domain.Order, error) {
	var orders []domain.Order
	for _, o := range slices.Backward(r.s.state.orders) {
		if o.OwnerID == ownerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r memOrders) ListOrders(_ context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	var orders []domain.Order
	for _, o := range slices.Backward(r.s.state.orders) {
		if status == nil || o.Status == *status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r memOrders) CountOrdersByStatus(_ context.Context, status domain.OrderStatus) (int64, error) {
	var n int64
	for _, o := range r.s.state.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r memOrders) SetStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus) (domain.Order, error) {
	if !domain.CanTransition(from, to) {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	if err := r.s.fail("orders.SetStatus"); err != nil {
		return domain.Order{}, err
	}
	i, err := r.find(id)
	if err != nil {
		return domain.Order{}, err
	}
	if r.s.state.orders[i].Status != from {
		return domain.Order{}, domain.ErrConflict
	}
	r.s.state.orders[i].Status = to
	r.s.state.orders[i].UpdatedAt = r.s.now()
	return r.s.state.orders[i], nil
}

func (r memOrders) DeleteOrder(_ context.Context, id uuid.UUID) (bool, error) {
	i, err := r.find(id)
	if err != nil {
		return false, nil
	}
	r.s.state.orders = slices.Delete(r.s.state.orders, i, i+1)
	return true, nil
}

// lockedCarts and lockedOrders take the store lock around every call.

type lockedCarts struct {
	s *memStore
}

func (l lockedCarts) repo() memCarts {
	return memCarts(memRepos{s: l.s})
}

func (l lockedCarts) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().GetCart(ctx, ownerID)
}

func (l lockedCarts) GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().GetOrCreateCart(ctx, ownerID)
}

func (l lockedCarts) LockCart(ctx context.Context, ownerID string) (domain.Cart, bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().LockCart(ctx, ownerID)
}

func (l lockedCarts) AddLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().AddLine(ctx, cartID, productID, quantity)
}

func (l lockedCarts) GetLine(ctx context.Context, lineID uuid.UUID) (domain.CartLine, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().GetLine(ctx, lineID)
}

func (l lockedCarts) SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().SetLineQuantity(ctx, lineID, quantity)
}

func (l lockedCarts) RemoveLine(ctx context.Context, lineID uuid.UUID) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().RemoveLine(ctx, lineID)
}

func (l lockedCarts) Clear(ctx context.Context, cartID uuid.UUID) (int64, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().Clear(ctx, cartID)
}

type lockedOrders struct {
	s *memStore
}

func (l lockedOrders) repo() memOrders {
	return memOrders(memRepos{s: l.s})
}

func (l lockedOrders) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().CreateOrder(ctx, order)
}

func (l lockedOrders) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().GetOrder(ctx, id)
}

func (l lockedOrders) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().GetOrderForUpdate(ctx, id)
}

func (l lockedOrders) ListOrdersByUser(ctx context.Context, ownerID string) ([]domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().ListOrdersByUser(ctx, ownerID)
}

func (l lockedOrders) ListOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().ListOrders(ctx, status)
}

func (l lockedOrders) CountOrdersByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().CountOrdersByStatus(ctx, status)
}

func (l lockedOrders) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().SetStatus(ctx, id, from, to)
}

func (l lockedOrders) DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.repo().DeleteOrder(ctx, id)
}

// fakeNotifier records every notification and fails with err when set.
type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	orders []domain.Order
}

func (n *fakeNotifier) NotifyOrderPlaced(_ context.Context, order domain.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
	return n.err
}

func (n *fakeNotifier) sent() []domain.Order {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.orders)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.CartSummary
	hits    int
	deletes int
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]domain.CartSummary{}}
}

func (c *fakeCache) Get(_ context.Context, ownerID string) (domain.CartSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.CartSummary{}, c.getErr
	}
	summary, ok := c.entries[ownerID]
	if !ok {
		return domain.CartSummary{}, port.ErrCacheMiss
	}
	c.hits++
	return summary, nil
}

func (c *fakeCache) Set(_ context.Context, ownerID string, summary domain.CartSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ownerID] = summary
	return nil
}

func (c *fakeCache) Delete(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ownerID)
	c.deletes++
	return nil
}

func (c *fakeCache) has(ownerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[ownerID]
	return ok
}

type fakeRecorder struct {
	mu        sync.Mutex
	checkouts map[string]int
	shipped   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{checkouts: map[string]int{}}
}

func (r *fakeRecorder) CheckoutCompleted(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts[outcome]++
}

func (r *fakeRecorder) OrderShipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shipped++
}

func customer(id string) domain.Principal {
	return domain.Principal{UserID: id}
}

func admin() domain.Principal {
	return domain.Principal{UserID: "admin@example.com", Admin: true}
}
