package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const maxRequestBodySize = 1 << 20

type CartAPI interface {
	Cart(ctx context.Context, principal domain.Principal, userID string) (domain.Cart, error)
	AddItem(ctx context.Context, principal domain.Principal, userID string, productID uuid.UUID, quantity int) (domain.CartLine, error)
	UpdateQuantity(ctx context.Context, principal domain.Principal, lineID uuid.UUID, quantity int) (domain.CartLine, error)
	RemoveItem(ctx context.Context, principal domain.Principal, lineID uuid.UUID) error
	Clear(ctx context.Context, principal domain.Principal, userID string) (int64, error)
	Summary(ctx context.Context, principal domain.Principal, userID string) (domain.CartSummary, error)
}

type CheckoutAPI interface {
	Checkout(ctx context.Context, principal domain.Principal, userID string) (domain.Order, error)
}

type FulfillmentAPI interface {
	MarkShipped(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (domain.Order, error)
}

type OrderAPI interface {
	Get(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (domain.Order, error)
	History(ctx context.Context, principal domain.Principal) ([]domain.Order, error)
	List(ctx context.Context, principal domain.Principal, status *domain.OrderStatus) ([]domain.Order, error)
	PendingCount(ctx context.Context, principal domain.Principal) (int64, error)
	Confirmation(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (domain.OrderConfirmation, error)
}

type CatalogAPI interface {
	Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Product(ctx context.Context, id uuid.UUID) (domain.Product, error)
	CreateProduct(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, principal domain.Principal, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, principal domain.Principal, id uuid.UUID) error
}

type Handler struct {
	cart        CartAPI
	checkout    CheckoutAPI
	fulfillment FulfillmentAPI
	orders      OrderAPI
	catalog     CatalogAPI
	currency    currency.Unit
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewHandler builds the handlers. Product prices in requests are in unit.
func NewHandler(cart CartAPI, checkout CheckoutAPI, fulfillment FulfillmentAPI, orders OrderAPI, catalog CatalogAPI, unit currency.Unit, logger *zap.Logger) *Handler {
	return &Handler{
		cart:        cart,
		checkout:    checkout,
		fulfillment: fulfillment,
		orders:      orders,
		catalog:     catalog,
		currency:    unit,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	principal := domain.PrincipalFrom(r.Context())

	cart, err := h.cart.Cart(r.Context(), principal, principal.UserID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) CartCount(w http.ResponseWriter, r *http.Request) {
	principal := domain.PrincipalFrom(r.Context())

	summary, err := h.cart.Summary(r.Context(), principal, principal.UserID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	principal := domain.PrincipalFrom(r.Context())

	line, err := h.cart.AddItem(r.Context(), principal, principal.UserID, uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartLineResponse(line))
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathUUID(w, r, "lineID")
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	line, err := h.cart.UpdateQuantity(r.Context(), domain.PrincipalFrom(r.Context()), lineID, req.Quantity)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartLineResponse(line))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathUUID(w, r, "lineID")
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(r.Context(), domain.PrincipalFrom(r.Context()), lineID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	principal := domain.PrincipalFrom(r.Context())

	removed, err := h.cart.Clear(r.Context(), principal, principal.UserID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, CountResponse{Count: removed})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal := domain.PrincipalFrom(r.Context())

	order, err := h.checkout.Checkout(r.Context(), principal, principal.UserID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.History(r.Context(), domain.PrincipalFrom(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), domain.PrincipalFrom(r.Context()), orderID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) OrderConfirmation(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}

	confirmation, err := h.orders.Confirmation(r.Context(), domain.PrincipalFrom(r.Context()), orderID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toConfirmationResponse(confirmation))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseOrderStatus(raw)
		if err != nil {
			respondDomainError(w, h.logger, err)
			return
		}
		status = &parsed
	}

	orders, err := h.orders.List(r.Context(), domain.PrincipalFrom(r.Context()), status)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) PendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.orders.PendingCount(r.Context(), domain.PrincipalFrom(r.Context()))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *Handler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.fulfillment.MarkShipped(r.Context(), domain.PrincipalFrom(r.Context()), orderID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	products, err := h.catalog.Products(r.Context(), filter)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.catalog.Product(r.Context(), productID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.toProduct(uuid.Nil, req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), domain.PrincipalFrom(r.Context()), product)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productID")
	if !ok {
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.toProduct(productID, req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	updated, err := h.catalog.UpdateProduct(r.Context(), domain.PrincipalFrom(r.Context()), product)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), domain.PrincipalFrom(r.Context()), productID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toProduct(id uuid.UUID, req ProductRequest) (domain.Product, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return domain.Product{}, domain.ValidationErrorf("price %q is not a number", req.Price)
	}

	return domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       domain.NewMoney(price, h.currency),
		Stock:       req.Stock,
	}, nil
}

// decode reads and validates a JSON body; it writes the 400 response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return false
	}

	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "validation failed"
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("%s is not a valid id", param))
		return uuid.Nil, false
	}
	return id, true
}

func parseProductFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()

	filter := domain.ProductFilter{
		Category: q.Get("category"),
		Sort:     domain.ProductSort(q.Get("sort")),
	}

	for _, p := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.ProductFilter{}, domain.ValidationErrorf("%s %q is not a number", p.key, raw)
		}
		*p.dst = &d
	}

	for _, p := range []struct {
		key string
		dst *int
	}{
		{"page", &filter.Page},
		{"per_page", &filter.PerPage},
	} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.ProductFilter{}, domain.ValidationErrorf("%s %q is not an integer", p.key, raw)
		}
		*p.dst = n
	}

	return filter, nil
}
