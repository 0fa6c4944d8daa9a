package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type FulfillmentService struct {
	uow      port.UnitOfWork
	recorder Recorder
	logger   *zap.Logger
}

func NewFulfillmentService(uow port.UnitOfWork, recorder Recorder, logger *zap.Logger) *FulfillmentService {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &FulfillmentService{
		uow:      uow,
		recorder: recorder,
		logger:   logger,
	}
}

// MarkShipped decrements stock for every line and moves the order to Shipped.
// Shipping an already shipped order returns it unchanged.
func (s *FulfillmentService) MarkShipped(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (_ domain.Order, err error) {
	ctx, span := startSpan(ctx, "FulfillmentService.MarkShipped")
	span.SetAttributes(attribute.String("order_id", orderID.String()))
	defer func() { endSpan(span, err) }()

	if err := domain.RequireAdmin(principal, domain.ActionShipOrder); err != nil {
		return domain.Order{}, err
	}

	var (
		result  domain.Order
		shipped bool
		skipped []uuid.UUID
	)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		// reset in case the unit of work is retried
		shipped, skipped = false, nil

		order, err := repos.Orders().GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}

		if order.Status == domain.OrderStatusShipped {
			result = order
			return nil
		}

		// fixed lock order across concurrent fulfillments
		lines := slices.Clone(order.Lines)
		slices.SortFunc(lines, func(a, b domain.OrderLine) int {
			return strings.Compare(a.ProductID.String(), b.ProductID.String())
		})

		for _, line := range lines {
			found, err := repos.Catalog().AdjustStock(ctx, line.ProductID, -line.Quantity)
			if err != nil {
				return fmt.Errorf("catalog.AdjustStock: %w", err)
			}
			if !found {
				skipped = append(skipped, line.ProductID)
			}
		}

		result, err = repos.Orders().SetStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusShipped)
		if err != nil {
			return fmt.Errorf("orders.SetStatus: %w", err)
		}
		shipped = true

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	for _, productID := range skipped {
		s.logger.Warn("product no longer in catalog, stock not adjusted",
			zap.String("order_id", orderID.String()),
			zap.String("product_id", productID.String()))
	}

	if shipped {
		s.recorder.OrderShipped()
		s.logger.Info("order shipped", zap.String("order_id", orderID.String()))
	}

	return result, nil
}
