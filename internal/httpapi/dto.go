package httpapi

import (
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type ProductRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
	Price       string `json:"price" validate:"required,numeric"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

type CartLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartResponse struct {
	ID      string             `json:"id,omitempty"`
	OwnerID string             `json:"owner_id"`
	Lines   []CartLineResponse `json:"lines"`
}

type OrderLineResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	OwnerID   string              `json:"owner_id"`
	Status    string              `json:"status"`
	Total     string              `json:"total"`
	Currency  string              `json:"currency"`
	Items     int                 `json:"items"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type ConfirmationResponse struct {
	Order      OrderResponse `json:"order"`
	Shipping   string        `json:"shipping"`
	FinalTotal string        `json:"final_total"`
	Currency   string        `json:"currency"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func amount(m domain.Money) string {
	return m.Amount.StringFixed(domain.MoneyScale)
}

func toCartLineResponse(line domain.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:        line.ID.String(),
		ProductID: line.ProductID.String(),
		Quantity:  line.Quantity,
	}
}

func toCartResponse(cart domain.Cart) CartResponse {
	resp := CartResponse{
		OwnerID: cart.OwnerID,
		Lines:   make([]CartLineResponse, 0, len(cart.Lines)),
	}
	if cart.Exists() {
		resp.ID = cart.ID.String()
	}
	for _, line := range cart.Lines {
		resp.Lines = append(resp.Lines, toCartLineResponse(line))
	}
	return resp
}

func toOrderResponse(order domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:        order.ID.String(),
		OwnerID:   order.OwnerID,
		Status:    order.Status.String(),
		Total:     amount(order.Total),
		Currency:  order.Total.Currency.String(),
		Items:     order.ItemCount(),
		Lines:     make([]OrderLineResponse, 0, len(order.Lines)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   amount(line.UnitPrice),
			Subtotal:    amount(line.Subtotal()),
		})
	}
	return resp
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return resp
}

func toConfirmationResponse(c domain.OrderConfirmation) ConfirmationResponse {
	return ConfirmationResponse{
		Order:      toOrderResponse(c.Order),
		Shipping:   amount(c.Shipping),
		FinalTotal: amount(c.FinalTotal),
		Currency:   c.FinalTotal.Currency.String(),
	}
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       amount(p.Price),
		Currency:    p.Price.Currency.String(),
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp
}
