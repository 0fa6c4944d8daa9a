package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// Postgres error codes that mean a concurrent transaction got in the way.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
)

type unitOfWork struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewUnitOfWork returns a unit of work that bounds every transaction by timeout.
// Zero timeout means the caller's context is the only deadline.
func NewUnitOfWork(pool *pgxpool.Pool, timeout time.Duration) port.UnitOfWork {
	return &unitOfWork{
		pool:    pool,
		timeout: timeout,
	}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.TxRepositories) error) error {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	_, err := withTx(ctx, u.pool, nil, func(q *db.Queries) (struct{}, error) {
		return struct{}{}, fn(ctx, &txRepositories{q: q})
	})

	return classifyError("unitOfWork.WithinTx", err)
}

type txRepositories struct {
	q *db.Queries
}

func (r *txRepositories) Carts() port.CartRepository {
	return &cartRepository{q: r.q}
}

func (r *txRepositories) Catalog() port.CatalogRepository {
	return &catalogRepository{q: r.q}
}

func (r *txRepositories) Orders() port.OrderRepository {
	return &orderRepository{q: r.q}
}

// classifyError maps a failed transaction onto the domain error categories.
// Domain errors are returned untouched.
func classifyError(op string, err error) error {
	if err == nil || domain.IsKnown(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
		}
	}

	return &domain.PersistenceError{Op: op, Err: err}
}
