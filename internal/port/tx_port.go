package port

import "context"

// TxRepositories are repositories bound to one open transaction.
type TxRepositories interface {
	Carts() CartRepository
	Catalog() CatalogRepository
	Orders() OrderRepository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back everything otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
