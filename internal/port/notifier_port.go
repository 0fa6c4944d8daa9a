package port

import (
	"context"
	"github.com/nikolayk812/storefront/internal/domain"
)

type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, order domain.Order) error
}
