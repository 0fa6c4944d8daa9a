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
	"github.com/shopspring/decimal"
)

type catalogRepository struct {
	q *db.Queries
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{q: db.New(pool)}
}

func NewCatalogWithTx(tx pgx.Tx) port.CatalogRepository {
	return &catalogRepository{q: db.New(tx)}
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	dbProduct, err := r.q.GetProduct(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	product, err := mapProductToDomain(dbProduct)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return product, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter = filter.Normalize()

	limit, err := toInt32("perPage", filter.PerPage)
	if err != nil {
		return nil, err
	}
	offset, err := toInt32("offset", filter.Offset())
	if err != nil {
		return nil, err
	}

	params := db.ListProductsParams{
		MinPrice: nullDecimal(filter.MinPrice),
		MaxPrice: nullDecimal(filter.MaxPrice),
		Sort:     string(filter.Sort),
		Limit:    limit,
		Offset:   offset,
	}
	if filter.Category != "" {
		params.Category = &filter.Category
	}

	dbProducts, err := r.q.ListProducts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	products := make([]domain.Product, 0, len(dbProducts))
	for _, row := range dbProducts {
		product, err := mapProductToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapProductToDomain: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func (r *catalogRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	stock, err := toInt32("stock", product.Stock)
	if err != nil {
		return domain.Product{}, err
	}

	id := product.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	dbProduct, err := r.q.CreateProduct(ctx, db.CreateProductParams{
		ID:            id,
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category,
		PriceAmount:   product.Price.Amount,
		PriceCurrency: product.Price.Currency.String(),
		Stock:         stock,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.CreateProduct: %w", err)
	}

	return mapProductToDomain(dbProduct)
}

func (r *catalogRepository) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	stock, err := toInt32("stock", product.Stock)
	if err != nil {
		return domain.Product{}, err
	}

	dbProduct, err := r.q.UpdateProduct(ctx, db.UpdateProductParams{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category,
		PriceAmount:   product.Price.Amount,
		PriceCurrency: product.Price.Currency.String(),
		Stock:         stock,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %s: %w", product.ID, domain.ErrProductNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.UpdateProduct: %w", err)
	}

	return mapProductToDomain(dbProduct)
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	rowsAffected, err := r.q.DeleteProduct(ctx, id)
	if err != nil {
		return false, fmt.Errorf("q.DeleteProduct: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *catalogRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	d, err := toInt32("delta", delta)
	if err != nil {
		return false, err
	}

	rowsAffected, err := r.q.AdjustProductStock(ctx, db.AdjustProductStockParams{
		Delta: d,
		ID:    id,
	})
	if err != nil {
		return false, fmt.Errorf("q.AdjustProductStock: %w", err)
	}

	return rowsAffected > 0, nil
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Category:    row.Category,
		Price:       price,
		Stock:       int(row.Stock),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
