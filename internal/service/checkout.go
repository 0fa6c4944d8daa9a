package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CheckoutService struct {
	uow      port.UnitOfWork
	notifier port.Notifier
	cache    port.CartCache
	recorder Recorder
	logger   *zap.Logger
}

// NewCheckoutService wires the checkout workflow. cache and recorder may be nil.
func NewCheckoutService(uow port.UnitOfWork, notifier port.Notifier, cache port.CartCache, recorder Recorder, logger *zap.Logger) *CheckoutService {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &CheckoutService{
		uow:      uow,
		notifier: notifier,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

// Checkout converts the user's cart into a Pending order.
// The order write and the cart clearing commit together; the notification is sent after commit
// and its failure never fails the checkout.
func (s *CheckoutService) Checkout(ctx context.Context, principal domain.Principal, userID string) (_ domain.Order, err error) {
	ctx, span := startSpan(ctx, "CheckoutService.Checkout")
	span.SetAttributes(attribute.String("user_id", userID))
	defer func() {
		s.recorder.CheckoutCompleted(checkoutOutcome(err))
		endSpan(span, err)
	}()

	if err := domain.RequireUser(principal, userID, domain.ActionCheckout); err != nil {
		return domain.Order{}, err
	}

	var order domain.Order

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		cart, found, err := repos.Carts().LockCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("carts.LockCart: %w", err)
		}
		if !found || cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		lines, err := priceLines(ctx, repos.Catalog(), domain.AggregateLines(cart.Lines))
		if err != nil {
			return err
		}

		newOrder, err := domain.NewOrder(userID, lines)
		if err != nil {
			return err
		}

		order, err = repos.Orders().CreateOrder(ctx, newOrder)
		if err != nil {
			return fmt.Errorf("orders.CreateOrder: %w", err)
		}

		if _, err := repos.Carts().Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("carts.Clear: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	span.SetAttributes(attribute.String("order_id", order.ID.String()))
	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(order.Lines)))

	s.invalidateCart(ctx, userID)

	if err := s.notifier.NotifyOrderPlaced(ctx, order); err != nil {
		s.logger.Warn("order placed notification failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}

	return order, nil
}

// priceLines snapshots the current catalog price of every product.
// A product missing from the catalog fails the whole checkout.
func priceLines(ctx context.Context, catalog port.CatalogRepository, items []domain.LineQuantity) ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, 0, len(items))

	for _, item := range items {
		product, err := catalog.GetProduct(ctx, item.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, &domain.ProductUnavailableError{ProductID: item.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("catalog.GetProduct: %w", err)
		}

		lines = append(lines, domain.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
	}

	return lines, nil
}

func (s *CheckoutService) invalidateCart(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
