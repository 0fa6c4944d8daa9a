package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error categories. Every error returned by the workflows matches exactly one of them
// through errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence error")
	ErrForbidden    = errors.New("forbidden")
	ErrNotification = errors.New("notification error")
)

var (
	ErrEmptyCart          = newKindError(ErrValidation, "cart is empty, nothing to checkout")
	ErrInvalidQuantity    = newKindError(ErrValidation, "quantity must be at least 1")
	ErrCurrencyMismatch   = newKindError(ErrValidation, "currency mismatch")
	ErrProductNotFound    = newKindError(ErrNotFound, "product not found")
	ErrProductUnavailable = newKindError(ErrNotFound, "product unavailable")
	ErrOrderNotFound      = newKindError(ErrNotFound, "order not found")
	ErrCartLineNotFound   = newKindError(ErrNotFound, "cart line not found")
	ErrInvalidTransition  = newKindError(ErrConflict, "invalid order status transition")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

// ValidationErrorf builds an ad-hoc error of the validation category.
func ValidationErrorf(format string, args ...any) error {
	return newKindError(ErrValidation, fmt.Sprintf(format, args...))
}

// ProductUnavailableError reports a cart line whose product is no longer in the catalog.
type ProductUnavailableError struct {
	ProductID uuid.UUID
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.ProductID)
}

func (e *ProductUnavailableError) Unwrap() error {
	return ErrProductUnavailable
}

// PersistenceError is a storage failure after which the transaction was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

type AuthorizationError struct {
	UserID string
	Action string
}

func (e *AuthorizationError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("anonymous user is not allowed to %s", e.Action)
	}
	return fmt.Sprintf("user %q is not allowed to %s", e.UserID, e.Action)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrForbidden
}

// IsKnown reports whether err belongs to one of the error categories.
func IsKnown(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPersistence, ErrForbidden, ErrNotification} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
