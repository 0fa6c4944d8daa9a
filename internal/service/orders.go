package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
)

// OrderService answers order queries for customers and the back office.
type OrderService struct {
	orders   port.OrderRepository
	shipping decimal.Decimal
}

// NewOrderService takes the flat shipping cost added on the confirmation, in the order's currency.
func NewOrderService(orders port.OrderRepository, shipping decimal.Decimal) *OrderService {
	return &OrderService{
		orders:   orders,
		shipping: shipping,
	}
}

func (s *OrderService) Get(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (domain.Order, error) {
	if err := domain.RequireAuthenticated(principal, domain.ActionViewOrder); err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, readError("orders.GetOrder", err)
	}

	if err := domain.RequireUser(principal, order.OwnerID, domain.ActionViewOrder); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// History lists the caller's own orders, newest first.
func (s *OrderService) History(ctx context.Context, principal domain.Principal) ([]domain.Order, error) {
	if err := domain.RequireAuthenticated(principal, domain.ActionViewHistory); err != nil {
		return nil, err
	}

	orders, err := s.orders.ListOrdersByUser(ctx, principal.UserID)
	if err != nil {
		return nil, readError("orders.ListOrdersByUser", err)
	}

	return orders, nil
}

// List returns all orders, optionally only those in status.
func (s *OrderService) List(ctx context.Context, principal domain.Principal, status *domain.OrderStatus) ([]domain.Order, error) {
	if err := domain.RequireAdmin(principal, domain.ActionListOrders); err != nil {
		return nil, err
	}

	orders, err := s.orders.ListOrders(ctx, status)
	if err != nil {
		return nil, readError("orders.ListOrders", err)
	}

	return orders, nil
}

func (s *OrderService) PendingCount(ctx context.Context, principal domain.Principal) (int64, error) {
	if err := domain.RequireAdmin(principal, domain.ActionListOrders); err != nil {
		return 0, err
	}

	count, err := s.orders.CountOrdersByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return 0, readError("orders.CountOrdersByStatus", err)
	}

	return count, nil
}

// Confirmation adds the flat shipping cost to the order total.
func (s *OrderService) Confirmation(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (domain.OrderConfirmation, error) {
	order, err := s.Get(ctx, principal, orderID)
	if err != nil {
		return domain.OrderConfirmation{}, err
	}

	return domain.NewOrderConfirmation(order, domain.NewMoney(s.shipping, order.Total.Currency))
}
