package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	Price       Money
	// Stock is decremented on shipment without a floor, so it can go negative.
	Stock int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ValidationErrorf("product name is empty")
	}
	if p.Price.IsNegative() {
		return ValidationErrorf("product price %s is negative", p.Price)
	}
	if !p.Price.HasValidScale() {
		return ValidationErrorf("product price %s has more than %d fractional digits", p.Price.Amount, MoneyScale)
	}
	return nil
}

type ProductSort string

const (
	SortDateDesc  ProductSort = "date_desc"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
)

const DefaultProductsPerPage = 16

type ProductFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     ProductSort
	// Page is 1-based.
	Page    int
	PerPage int
}

func (f ProductFilter) Normalize() ProductFilter {
	switch f.Sort {
	case SortPriceAsc, SortPriceDesc, SortDateDesc:
	default:
		f.Sort = SortDateDesc
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultProductsPerPage
	}
	return f
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}
