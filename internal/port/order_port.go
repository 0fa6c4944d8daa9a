package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListOrdersByUser(ctx context.Context, ownerID string) ([]domain.Order, error)
	ListOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)
	CountOrdersByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (domain.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error)
}
