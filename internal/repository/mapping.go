package repository

import (
	"fmt"
	"math"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func mapMoney(amount decimal.Decimal, code string) (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	return domain.Money{Amount: amount, Currency: parsedCurrency}, nil
}

func toInt32(name string, v int) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, domain.ValidationErrorf("%s %d is out of range", name, v)
	}
	return int32(v), nil
}
