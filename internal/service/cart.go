package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	uow    port.UnitOfWork
	carts  port.CartRepository
	cache  port.CartCache
	logger *zap.Logger

	summaries singleflight.Group
	// invalidations counts cache invalidations; a summary read that overlaps
	// one is not written back.
	invalidations atomic.Uint64
}

// NewCartService wires cart management. cache may be nil.
func NewCartService(uow port.UnitOfWork, carts port.CartRepository, cache port.CartCache, logger *zap.Logger) *CartService {
	return &CartService{
		uow:    uow,
		carts:  carts,
		cache:  cache,
		logger: logger,
	}
}

func (s *CartService) Cart(ctx context.Context, principal domain.Principal, userID string) (domain.Cart, error) {
	if err := domain.RequireUser(principal, userID, domain.ActionManageCart); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, readError("carts.GetCart", err)
	}

	return cart, nil
}

// AddItem creates the cart on first use and merges the quantity into an existing line
// of the same product.
func (s *CartService) AddItem(ctx context.Context, principal domain.Principal, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.RequireUser(principal, userID, domain.ActionManageCart); err != nil {
		return domain.CartLine{}, err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}

	var line domain.CartLine

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		if _, err := repos.Catalog().GetProduct(ctx, productID); err != nil {
			return fmt.Errorf("catalog.GetProduct: %w", err)
		}

		cart, err := repos.Carts().GetOrCreateCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("carts.GetOrCreateCart: %w", err)
		}

		line, err = repos.Carts().AddLine(ctx, cart.ID, productID, quantity)
		if err != nil {
			return fmt.Errorf("carts.AddLine: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartLine{}, err
	}

	s.invalidate(ctx, userID)

	return line, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, principal domain.Principal, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.RequireAuthenticated(principal, domain.ActionManageCart); err != nil {
		return domain.CartLine{}, err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}

	var line domain.CartLine

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		if err := requireOwnLine(ctx, repos.Carts(), principal, lineID); err != nil {
			return err
		}

		var err error
		line, err = repos.Carts().SetLineQuantity(ctx, lineID, quantity)
		if err != nil {
			return fmt.Errorf("carts.SetLineQuantity: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartLine{}, err
	}

	s.invalidate(ctx, principal.UserID)

	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, principal domain.Principal, lineID uuid.UUID) error {
	if err := domain.RequireAuthenticated(principal, domain.ActionManageCart); err != nil {
		return err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		if err := requireOwnLine(ctx, repos.Carts(), principal, lineID); err != nil {
			return err
		}

		removed, err := repos.Carts().RemoveLine(ctx, lineID)
		if err != nil {
			return fmt.Errorf("carts.RemoveLine: %w", err)
		}
		if !removed {
			return domain.ErrCartLineNotFound
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, principal.UserID)

	return nil
}

// Clear empties the cart and returns the number of removed lines.
func (s *CartService) Clear(ctx context.Context, principal domain.Principal, userID string) (int64, error) {
	if err := domain.RequireUser(principal, userID, domain.ActionManageCart); err != nil {
		return 0, err
	}

	var cleared int64

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		cart, found, err := repos.Carts().LockCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("carts.LockCart: %w", err)
		}
		if !found {
			return nil
		}

		cleared, err = repos.Carts().Clear(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("carts.Clear: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, userID)

	return cleared, nil
}

// Summary returns line and item counts, served from the cache when possible.
// Concurrent misses for the same user share one database read.
func (s *CartService) Summary(ctx context.Context, principal domain.Principal, userID string) (domain.CartSummary, error) {
	if err := domain.RequireUser(principal, userID, domain.ActionManageCart); err != nil {
		return domain.CartSummary{}, err
	}

	if s.cache != nil {
		summary, err := s.cache.Get(ctx, userID)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, port.ErrCacheMiss) {
			s.logger.Warn("cart cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	v, err, _ := s.summaries.Do(userID, func() (interface{}, error) {
		// shared by every waiting caller, so it must outlive the first one
		ctx := context.WithoutCancel(ctx)
		seen := s.invalidations.Load()

		cart, err := s.carts.GetCart(ctx, userID)
		if err != nil {
			return nil, readError("carts.GetCart", err)
		}

		summary := cart.Summary()

		if s.cache != nil && s.invalidations.Load() == seen {
			if err := s.cache.Set(ctx, userID, summary); err != nil {
				s.logger.Warn("cart cache write failed", zap.String("user_id", userID), zap.Error(err))
			}
		}

		return summary, nil
	})
	if err != nil {
		return domain.CartSummary{}, err
	}

	return v.(domain.CartSummary), nil
}

// invalidate drops the cached summary. Reads already in flight for userID are
// forgotten so later callers see the write. A read from another instance can
// still repopulate the old value until the TTL expires.
func (s *CartService) invalidate(ctx context.Context, userID string) {
	s.invalidations.Add(1)
	s.summaries.Forget(userID)

	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// requireOwnLine rejects lines that belong to another user's cart. It locks
// the principal's cart first, so line edits wait for a running checkout.
func requireOwnLine(ctx context.Context, carts port.CartRepository, principal domain.Principal, lineID uuid.UUID) error {
	cart, found, err := carts.LockCart(ctx, principal.UserID)
	if err != nil {
		return fmt.Errorf("carts.LockCart: %w", err)
	}
	if !found {
		return &domain.AuthorizationError{UserID: principal.UserID, Action: domain.ActionManageCart}
	}

	line, err := carts.GetLine(ctx, lineID)
	if err != nil {
		return fmt.Errorf("carts.GetLine: %w", err)
	}

	if cart.ID != line.CartID {
		return &domain.AuthorizationError{UserID: principal.UserID, Action: domain.ActionManageCart}
	}

	return nil
}
