package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// CatalogService serves product browsing and back-office product maintenance.
type CatalogService struct {
	catalog port.CatalogRepository
}

func NewCatalogService(catalog port.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, domain.ValidationErrorf("min price %s is greater than max price %s", filter.MinPrice, filter.MaxPrice)
	}

	products, err := s.catalog.ListProducts(ctx, filter.Normalize())
	if err != nil {
		return nil, readError("catalog.ListProducts", err)
	}

	return products, nil
}

func (s *CatalogService) Product(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, readError("catalog.GetProduct", err)
	}

	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error) {
	if err := domain.RequireAdmin(principal, domain.ActionManageCatalog); err != nil {
		return domain.Product{}, err
	}

	created, err := s.catalog.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, readError("catalog.CreateProduct", err)
	}

	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error) {
	if err := domain.RequireAdmin(principal, domain.ActionManageCatalog); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.catalog.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, readError("catalog.UpdateProduct", err)
	}

	return updated, nil
}

// DeleteProduct removes the product from the catalog. Cart lines that still reference it
// make the next checkout of those carts fail.
func (s *CatalogService) DeleteProduct(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	if err := domain.RequireAdmin(principal, domain.ActionManageCatalog); err != nil {
		return err
	}

	deleted, err := s.catalog.DeleteProduct(ctx, id)
	if err != nil {
		return readError("catalog.DeleteProduct", err)
	}
	if !deleted {
		return domain.ErrProductNotFound
	}

	return nil
}
