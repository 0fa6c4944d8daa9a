package port

import (
	"context"
	"errors"
	"github.com/nikolayk812/storefront/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

type CartCache interface {
	Get(ctx context.Context, ownerID string) (domain.CartSummary, error)
	Set(ctx context.Context, ownerID string, summary domain.CartSummary) error
	Delete(ctx context.Context, ownerID string) error
}
