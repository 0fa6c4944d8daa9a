package domain_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestNewOrder(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		ownerID   string
		lines     []domain.OrderLine
		wantTotal string
		wantError error
	}{
		{
			name:      "single line: ok",
			ownerID:   "owner",
			lines:     []domain.OrderLine{{ProductID: p1, Quantity: 5, UnitPrice: usd("10.00")}},
			wantTotal: "50.00",
		},
		{
			name:    "two lines: ok",
			ownerID: "owner",
			lines: []domain.OrderLine{
				{ProductID: p1, Quantity: 3, UnitPrice: usd("19.99")},
				{ProductID: p2, Quantity: 3, UnitPrice: usd("0.10")},
			},
			wantTotal: "60.27",
		},
		{
			name:      "empty owner: error",
			lines:     []domain.OrderLine{{ProductID: p1, Quantity: 1, UnitPrice: usd("1.00")}},
			wantError: domain.ErrValidation,
		},
		{
			name:      "no lines: error",
			ownerID:   "owner",
			wantError: domain.ErrValidation,
		},
		{
			name:    "duplicate product: error",
			ownerID: "owner",
			lines: []domain.OrderLine{
				{ProductID: p1, Quantity: 1, UnitPrice: usd("1.00")},
				{ProductID: p1, Quantity: 2, UnitPrice: usd("1.00")},
			},
			wantError: domain.ErrValidation,
		},
		{
			name:      "zero quantity: error",
			ownerID:   "owner",
			lines:     []domain.OrderLine{{ProductID: p1, Quantity: 0, UnitPrice: usd("1.00")}},
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name:      "negative price: error",
			ownerID:   "owner",
			lines:     []domain.OrderLine{{ProductID: p1, Quantity: 1, UnitPrice: usd("-1.00")}},
			wantError: domain.ErrValidation,
		},
		{
			name:    "mixed currencies: error",
			ownerID: "owner",
			lines: []domain.OrderLine{
				{ProductID: p1, Quantity: 1, UnitPrice: usd("1.00")},
				{ProductID: p2, Quantity: 1, UnitPrice: domain.NewMoney(decimal.NewFromInt(1), currency.EUR)},
			},
			wantError: domain.ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := domain.NewOrder(tt.ownerID, tt.lines)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.NotEqual(t, uuid.Nil, order.ID)
			assert.Equal(t, domain.OrderStatusPending, order.Status)
			assert.Equal(t, tt.wantTotal, order.Total.Amount.StringFixed(2))
			require.NoError(t, order.Validate())
		})
	}
}

// The decimal total always equals the integer sum of cents.
func TestNewOrder_TotalIsExact(t *testing.T) {
	faker := gofakeit.New(42)

	for i := range 500 {
		n := faker.IntRange(1, 8)

		lines := make([]domain.OrderLine, 0, n)
		var wantCents int64
		for range n {
			cents := int64(faker.IntRange(0, 99_999))
			qty := faker.IntRange(1, 50)
			wantCents += cents * int64(qty)

			lines = append(lines, domain.OrderLine{
				ProductID: uuid.New(),
				Quantity:  qty,
				UnitPrice: domain.NewMoney(decimal.New(cents, -2), currency.USD),
			})
		}

		order, err := domain.NewOrder("owner", lines)
		require.NoError(t, err, "iteration %d", i)

		want := decimal.New(wantCents, -2)
		require.True(t, want.Equal(order.Total.Amount), "iteration %d: total %s, want %s", i, order.Total.Amount, want)
		require.True(t, order.Total.HasValidScale())
	}
}

func TestOrder_Validate(t *testing.T) {
	order, err := domain.NewOrder("owner", []domain.OrderLine{{ProductID: uuid.New(), Quantity: 2, UnitPrice: usd("1.50")}})
	require.NoError(t, err)
	require.NoError(t, order.Validate())

	tampered := order
	tampered.Total = usd("3.01")
	require.ErrorIs(t, tampered.Validate(), domain.ErrValidation)

	tampered = order
	tampered.Status = "Lost"
	require.ErrorIs(t, tampered.Validate(), domain.ErrValidation)

	tampered = order
	tampered.ID = uuid.Nil
	require.ErrorIs(t, tampered.Validate(), domain.ErrValidation)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, domain.CanTransition(domain.OrderStatusPending, domain.OrderStatusShipped))
	assert.False(t, domain.CanTransition(domain.OrderStatusShipped, domain.OrderStatusPending))
	assert.False(t, domain.CanTransition(domain.OrderStatusShipped, domain.OrderStatusShipped))
	assert.False(t, domain.CanTransition(domain.OrderStatusPending, domain.OrderStatusPending))
	assert.True(t, domain.OrderStatusShipped.IsTerminal())
	assert.False(t, domain.OrderStatusPending.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, status)

	_, err = domain.ParseOrderStatus("shipped")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderConfirmation(t *testing.T) {
	order, err := domain.NewOrder("owner", []domain.OrderLine{{ProductID: uuid.New(), Quantity: 3, UnitPrice: usd("19.99")}})
	require.NoError(t, err)

	confirmation, err := domain.NewOrderConfirmation(order, usd("7.00"))
	require.NoError(t, err)
	assert.Equal(t, "66.97 USD", confirmation.FinalTotal.String())
	assert.Equal(t, 3, confirmation.Order.ItemCount())

	_, err = domain.NewOrderConfirmation(order, domain.NewMoney(decimal.NewFromInt(7), currency.EUR))
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}
