package repository_test

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

// newMigratedPool starts a fresh Postgres and applies the schema migrations to it.
func newMigratedPool(ctx context.Context) (*postgres.PostgresContainer, *pgxpool.Pool, error) {
	container, connStr, err := startPostgres(ctx)
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return container, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := migrations.Up(ctx, pool); err != nil {
		pool.Close()
		return container, nil, fmt.Errorf("migrations.Up: %w", err)
	}

	return container, pool, nil
}

func randomProduct() domain.Product {
	return domain.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Category:    gofakeit.ProductCategory(),
		Price:       randomMoney(),
		Stock:       gofakeit.IntRange(0, 100),
	}
}

func randomMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(domain.MoneyScale),
		Currency: randomCurrency(),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func randomOrderLine(unit currency.Unit) domain.OrderLine {
	return domain.OrderLine{
		ProductID:   uuid.New(),
		ProductName: gofakeit.ProductName(),
		Quantity:    gofakeit.IntRange(1, 5),
		UnitPrice: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(domain.MoneyScale),
			Currency: unit,
		},
	}
}

func randomOrder(ownerID string, lineCount int) domain.Order {
	unit := randomCurrency()

	lines := make([]domain.OrderLine, 0, lineCount)
	for range lineCount {
		lines = append(lines, randomOrderLine(unit))
	}

	order, err := domain.NewOrder(ownerID, lines)
	if err != nil {
		panic(err)
	}

	return order
}

var currencyComparer = cmp.Comparer(func(x, y currency.Unit) bool {
	return x.String() == y.String()
})

var decimalComparer = cmp.Comparer(func(x, y decimal.Decimal) bool {
	return x.Equal(y)
})
