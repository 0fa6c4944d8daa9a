package httpapi_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

// stubAPI implements every service interface of the router; unset funcs panic.
type stubAPI struct {
	cartFn           func(p domain.Principal, userID string) (domain.Cart, error)
	addItemFn        func(p domain.Principal, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error)
	updateQuantityFn func(p domain.Principal, lineID uuid.UUID, quantity int) (domain.CartLine, error)
	removeItemFn     func(p domain.Principal, lineID uuid.UUID) error
	clearFn          func(p domain.Principal, userID string) (int64, error)
	summaryFn        func(p domain.Principal, userID string) (domain.CartSummary, error)

	checkoutFn    func(p domain.Principal, userID string) (domain.Order, error)
	markShippedFn func(p domain.Principal, orderID uuid.UUID) (domain.Order, error)

	getOrderFn     func(p domain.Principal, orderID uuid.UUID) (domain.Order, error)
	historyFn      func(p domain.Principal) ([]domain.Order, error)
	listOrdersFn   func(p domain.Principal, status *domain.OrderStatus) ([]domain.Order, error)
	pendingCountFn func(p domain.Principal) (int64, error)
	confirmationFn func(p domain.Principal, orderID uuid.UUID) (domain.OrderConfirmation, error)

	productsFn      func(filter domain.ProductFilter) ([]domain.Product, error)
	productFn       func(id uuid.UUID) (domain.Product, error)
	createProductFn func(p domain.Principal, product domain.Product) (domain.Product, error)
	updateProductFn func(p domain.Principal, product domain.Product) (domain.Product, error)
	deleteProductFn func(p domain.Principal, id uuid.UUID) error
}

func (s *stubAPI) Cart(_ context.Context, p domain.Principal, userID string) (domain.Cart, error) {
	return s.cartFn(p, userID)
}

func (s *stubAPI) AddItem(_ context.Context, p domain.Principal, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	return s.addItemFn(p, userID, productID, quantity)
}

func (s *stubAPI) UpdateQuantity(_ context.Context, p domain.Principal, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	return s.updateQuantityFn(p, lineID, quantity)
}

func (s *stubAPI) RemoveItem(_ context.Context, p domain.Principal, lineID uuid.UUID) error {
	return s.removeItemFn(p, lineID)
}

func (s *stubAPI) Clear(_ context.Context, p domain.Principal, userID string) (int64, error) {
	return s.clearFn(p, userID)
}

func (s *stubAPI) Summary(_ context.Context, p domain.Principal, userID string) (domain.CartSummary, error) {
	return s.summaryFn(p, userID)
}

func (s *stubAPI) Checkout(_ context.Context, p domain.Principal, userID string) (domain.Order, error) {
	return s.checkoutFn(p, userID)
}

func (s *stubAPI) MarkShipped(_ context.Context, p domain.Principal, orderID uuid.UUID) (domain.Order, error) {
	return s.markShippedFn(p, orderID)
}

func (s *stubAPI) Get(_ context.Context, p domain.Principal, orderID uuid.UUID) (domain.Order, error) {
	return s.getOrderFn(p, orderID)
}

func (s *stubAPI) History(_ context.Context, p domain.Principal) ([]domain.Order, error) {
	return s.historyFn(p)
}

func (s *stubAPI) List(_ context.Context, p domain.Principal, status *domain.OrderStatus) ([]domain.Order, error) {
	return s.listOrdersFn(p, status)
}

func (s *stubAPI) PendingCount(_ context.Context, p domain.Principal) (int64, error) {
	return s.pendingCountFn(p)
}

func (s *stubAPI) Confirmation(_ context.Context, p domain.Principal, orderID uuid.UUID) (domain.OrderConfirmation, error) {
	return s.confirmationFn(p, orderID)
}

func (s *stubAPI) Products(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.productsFn(filter)
}

func (s *stubAPI) Product(_ context.Context, id uuid.UUID) (domain.Product, error) {
	return s.productFn(id)
}

func (s *stubAPI) CreateProduct(_ context.Context, p domain.Principal, product domain.Product) (domain.Product, error) {
	return s.createProductFn(p, product)
}

func (s *stubAPI) UpdateProduct(_ context.Context, p domain.Principal, product domain.Product) (domain.Product, error) {
	return s.updateProductFn(p, product)
}

func (s *stubAPI) DeleteProduct(_ context.Context, p domain.Principal, id uuid.UUID) error {
	return s.deleteProductFn(p, id)
}

type observed struct {
	route  string
	status int
}

type stubObserver struct {
	requests []observed
}

func (o *stubObserver) ObserveRequest(route string, status int, _ time.Duration) {
	o.requests = append(o.requests, observed{route: route, status: status})
}
