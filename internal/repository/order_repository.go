package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

// CreateOrder writes the order row and all its lines atomically.
func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := order.Validate(); err != nil {
		return domain.Order{}, err
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.CreateOrder(ctx, db.CreateOrderParams{
			ID:            order.ID,
			OwnerID:       order.OwnerID,
			TotalAmount:   order.Total.Amount,
			TotalCurrency: order.Total.Currency.String(),
			Status:        order.Status.String(),
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.CreateOrder: %w", err)
		}

		dbLines := make([]db.OrderLine, 0, len(order.Lines))
		for i, line := range order.Lines {
			qty, err := toInt32("quantity", line.Quantity)
			if err != nil {
				return domain.Order{}, err
			}

			params := db.CreateOrderLineParams{
				OrderID:           order.ID,
				ProductID:         line.ProductID,
				LineNo:            int32(i + 1),
				ProductName:       line.ProductName,
				Quantity:          qty,
				UnitPriceAmount:   line.UnitPrice.Amount,
				UnitPriceCurrency: line.UnitPrice.Currency.String(),
			}
			if err := q.CreateOrderLine(ctx, params); err != nil {
				return domain.Order{}, fmt.Errorf("q.CreateOrderLine: %w", err)
			}

			dbLines = append(dbLines, db.OrderLine(params))
		}

		return mapOrderToDomain(dbOrder, dbLines)
	})
}

func (r *orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	dbOrder, err := r.q.GetOrder(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	return r.withLines(ctx, dbOrder)
}

// GetOrderForUpdate holds the order row lock until the surrounding transaction ends.
func (r *orderRepository) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	dbOrder, err := r.q.GetOrderForUpdate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderForUpdate: %w", err)
	}

	return r.withLines(ctx, dbOrder)
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, domain.ValidationErrorf("ownerID is empty")
	}

	dbOrders, err := r.q.ListOrdersByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrdersByOwner: %w", err)
	}

	return r.listWithLines(ctx, dbOrders)
}

func (r *orderRepository) ListOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	var statusArg *string
	if status != nil {
		s := status.String()
		statusArg = &s
	}

	dbOrders, err := r.q.ListOrders(ctx, statusArg)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}

	return r.listWithLines(ctx, dbOrders)
}

func (r *orderRepository) CountOrdersByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	count, err := r.q.CountOrdersByStatus(ctx, status.String())
	if err != nil {
		return 0, fmt.Errorf("q.CountOrdersByStatus: %w", err)
	}

	return count, nil
}

// SetStatus moves the order from one status to another only if it is still in from.
func (r *orderRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (domain.Order, error) {
	if !domain.CanTransition(from, to) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}

	dbOrder, err := r.q.UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
		ToStatus:   to.String(),
		ID:         id,
		FromStatus: from.String(),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.GetOrder(ctx, id)
		if getErr != nil {
			return domain.Order{}, getErr
		}
		return domain.Order{}, fmt.Errorf("order %s is %s, want %s: %w", id, current.Status, from, domain.ErrConflict)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.UpdateOrderStatus: %w", err)
	}

	return r.withLines(ctx, dbOrder)
}

// DeleteOrder removes the order; its lines are removed by the cascade.
func (r *orderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	rowsAffected, err := r.q.DeleteOrder(ctx, id)
	if err != nil {
		return false, fmt.Errorf("q.DeleteOrder: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *orderRepository) withLines(ctx context.Context, dbOrder db.Order) (domain.Order, error) {
	dbLines, err := r.q.ListOrderLines(ctx, []uuid.UUID{dbOrder.ID})
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.ListOrderLines: %w", err)
	}

	return mapOrderToDomain(dbOrder, dbLines)
}

func (r *orderRepository) listWithLines(ctx context.Context, dbOrders []db.Order) ([]domain.Order, error) {
	if len(dbOrders) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(dbOrders))
	for _, o := range dbOrders {
		ids = append(ids, o.ID)
	}

	dbLines, err := r.q.ListOrderLines(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrderLines: %w", err)
	}

	linesByOrder := make(map[uuid.UUID][]db.OrderLine, len(dbOrders))
	for _, line := range dbLines {
		linesByOrder[line.OrderID] = append(linesByOrder[line.OrderID], line)
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapOrderToDomain(dbOrder, linesByOrder[dbOrder.ID])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func mapOrderToDomain(row db.Order, dbLines []db.OrderLine) (domain.Order, error) {
	total, err := mapMoney(row.TotalAmount, row.TotalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s total: %w", row.ID, err)
	}

	status, err := domain.ParseOrderStatus(row.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", row.ID, err)
	}

	lines := make([]domain.OrderLine, 0, len(dbLines))
	for _, dbLine := range dbLines {
		unitPrice, err := mapMoney(dbLine.UnitPriceAmount, dbLine.UnitPriceCurrency)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order %s line %d: %w", row.ID, dbLine.LineNo, err)
		}

		lines = append(lines, domain.OrderLine{
			ProductID:   dbLine.ProductID,
			ProductName: dbLine.ProductName,
			Quantity:    int(dbLine.Quantity),
			UnitPrice:   unitPrice,
		})
	}

	return domain.Order{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Total:     total,
		Status:    status,
		Lines:     lines,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
