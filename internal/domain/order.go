package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "Pending"
	OrderStatusShipped OrderStatus = "Shipped"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusShipped:
		return status, nil
	default:
		return "", ValidationErrorf("unknown order status %q", s)
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransition reports whether an order may move from one status to another.
// Pending -> Shipped is the only transition.
func CanTransition(from, to OrderStatus) bool {
	return from == OrderStatusPending && to == OrderStatusShipped
}

type Order struct {
	ID      uuid.UUID
	OwnerID string
	Total   Money
	Status  OrderStatus
	Lines   []OrderLine

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine keeps the unit price captured at checkout; it is never re-priced.
type OrderLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   Money
}

func (l OrderLine) Subtotal() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// NewOrder builds a Pending order and computes its total from the line prices.
func NewOrder(ownerID string, lines []OrderLine) (Order, error) {
	if ownerID == "" {
		return Order{}, ValidationErrorf("ownerID is empty")
	}

	total, err := SumLines(lines)
	if err != nil {
		return Order{}, err
	}

	return Order{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Total:   total,
		Status:  OrderStatusPending,
		Lines:   lines,
	}, nil
}

// SumLines validates the lines and returns the exact decimal sum of their subtotals.
func SumLines(lines []OrderLine) (Money, error) {
	if len(lines) == 0 {
		return Money{}, ValidationErrorf("order has no lines")
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	total := ZeroMoney(lines[0].UnitPrice.Currency)

	for _, line := range lines {
		if _, dup := seen[line.ProductID]; dup {
			return Money{}, ValidationErrorf("order has more than one line for product %s", line.ProductID)
		}
		seen[line.ProductID] = struct{}{}

		if err := ValidateQuantity(line.Quantity); err != nil {
			return Money{}, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		if line.UnitPrice.IsNegative() {
			return Money{}, ValidationErrorf("product %s has negative unit price %s", line.ProductID, line.UnitPrice)
		}

		var err error
		total, err = total.Add(line.Subtotal())
		if err != nil {
			return Money{}, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
	}

	return total, nil
}

// Validate checks the aggregate invariants before it is written to the ledger.
func (o Order) Validate() error {
	if o.ID == uuid.Nil {
		return ValidationErrorf("order id is empty")
	}
	if o.OwnerID == "" {
		return ValidationErrorf("ownerID is empty")
	}
	if _, err := ParseOrderStatus(string(o.Status)); err != nil {
		return err
	}

	total, err := SumLines(o.Lines)
	if err != nil {
		return err
	}
	if !total.Equal(o.Total) {
		return ValidationErrorf("order total %s does not match sum of lines %s", o.Total, total)
	}

	return nil
}

func (o Order) ItemCount() int {
	var n int
	for _, line := range o.Lines {
		n += line.Quantity
	}
	return n
}

// OrderConfirmation is what the customer sees right after checkout.
type OrderConfirmation struct {
	Order      Order
	Shipping   Money
	FinalTotal Money
}

func NewOrderConfirmation(order Order, shipping Money) (OrderConfirmation, error) {
	final, err := order.Total.Add(shipping)
	if err != nil {
		return OrderConfirmation{}, err
	}

	return OrderConfirmation{Order: order, Shipping: shipping, FinalTotal: final}, nil
}
