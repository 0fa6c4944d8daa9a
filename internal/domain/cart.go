package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID      uuid.UUID
	OwnerID string
	Lines   []CartLine

	CreatedAt time.Time
}

type CartLine struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartSummary is the compact cart view shown next to the cart icon.
type CartSummary struct {
	OwnerID string `json:"owner_id"`
	Lines   int    `json:"lines"`
	Items   int    `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Exists is false for the zero cart returned to users who never added anything.
func (c Cart) Exists() bool {
	return c.ID != uuid.Nil
}

func (c Cart) Summary() CartSummary {
	summary := CartSummary{OwnerID: c.OwnerID, Lines: len(c.Lines)}
	for _, line := range c.Lines {
		summary.Items += line.Quantity
	}
	return summary
}

func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// LineQuantity is one distinct product with its summed quantity.
type LineQuantity struct {
	ProductID uuid.UUID
	Quantity  int
}

// AggregateLines merges lines of the same product by summing their quantities.
// The result keeps the order in which products first appear.
func AggregateLines(lines []CartLine) []LineQuantity {
	index := make(map[uuid.UUID]int, len(lines))
	result := make([]LineQuantity, 0, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			result[i].Quantity += line.Quantity
			continue
		}

		index[line.ProductID] = len(result)
		result = append(result, LineQuantity{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	return result
}
