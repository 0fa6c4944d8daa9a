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

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

// GetCart returns an empty cart without an ID when the owner has none yet.
func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ValidationErrorf("ownerID is empty")
	}

	dbCart, err := r.q.GetCartByOwner(ctx, ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartByOwner: %w", err)
	}

	return loadCart(ctx, r.q, dbCart)
}

func (r *cartRepository) GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ValidationErrorf("ownerID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := q.UpsertCart(ctx, db.UpsertCartParams{
			ID:      uuid.New(),
			OwnerID: ownerID,
		})
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.UpsertCart: %w", err)
		}

		return loadCart(ctx, q, dbCart)
	})
}

// LockCart only holds the lock when the repository is bound to a transaction.
func (r *cartRepository) LockCart(ctx context.Context, ownerID string) (domain.Cart, bool, error) {
	if ownerID == "" {
		return domain.Cart{}, false, domain.ValidationErrorf("ownerID is empty")
	}

	dbCart, err := r.q.LockCartByOwner(ctx, ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{OwnerID: ownerID}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("q.LockCartByOwner: %w", err)
	}

	cart, err := loadCart(ctx, r.q, dbCart)
	if err != nil {
		return domain.Cart{}, false, err
	}

	return cart, true, nil
}

func (r *cartRepository) AddLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}
	qty, err := toInt32("quantity", quantity)
	if err != nil {
		return domain.CartLine{}, err
	}

	dbLine, err := r.q.AddCartLine(ctx, db.AddCartLineParams{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
	})
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("q.AddCartLine: %w", err)
	}

	return mapCartLineToDomain(dbLine), nil
}

func (r *cartRepository) GetLine(ctx context.Context, lineID uuid.UUID) (domain.CartLine, error) {
	dbLine, err := r.q.GetCartLine(ctx, lineID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("q.GetCartLine: %w", err)
	}

	return mapCartLineToDomain(dbLine), nil
}

func (r *cartRepository) SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) (domain.CartLine, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartLine{}, err
	}
	qty, err := toInt32("quantity", quantity)
	if err != nil {
		return domain.CartLine{}, err
	}

	dbLine, err := r.q.SetCartLineQuantity(ctx, db.SetCartLineQuantityParams{
		ID:       lineID,
		Quantity: qty,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("q.SetCartLineQuantity: %w", err)
	}

	return mapCartLineToDomain(dbLine), nil
}

func (r *cartRepository) RemoveLine(ctx context.Context, lineID uuid.UUID) (bool, error) {
	rowsAffected, err := r.q.DeleteCartLine(ctx, lineID)
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartLine: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) (int64, error) {
	rowsAffected, err := r.q.ClearCart(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("q.ClearCart: %w", err)
	}

	return rowsAffected, nil
}

func loadCart(ctx context.Context, q *db.Queries, dbCart db.Cart) (domain.Cart, error) {
	dbLines, err := q.ListCartLines(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.ListCartLines: %w", err)
	}

	return domain.Cart{
		ID:        dbCart.ID,
		OwnerID:   dbCart.OwnerID,
		Lines:     mapCartLinesToDomain(dbLines),
		CreatedAt: dbCart.CreatedAt,
	}, nil
}

func mapCartLineToDomain(row db.CartLine) domain.CartLine {
	return domain.CartLine{
		ID:        row.ID,
		CartID:    row.CartID,
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func mapCartLinesToDomain(rows []db.CartLine) []domain.CartLine {
	var lines []domain.CartLine

	for _, row := range rows {
		lines = append(lines, mapCartLineToDomain(row))
	}

	return lines
}
