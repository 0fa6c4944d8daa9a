package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error)
	// LockCart reads the cart and holds its row lock until the surrounding transaction ends.
	LockCart(ctx context.Context, ownerID string) (domain.Cart, bool, error)
	AddLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartLine, error)
	GetLine(ctx context.Context, lineID uuid.UUID) (domain.CartLine, error)
	SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) (domain.CartLine, error)
	RemoveLine(ctx context.Context, lineID uuid.UUID) (bool, error)
	Clear(ctx context.Context, cartID uuid.UUID) (int64, error)
}
