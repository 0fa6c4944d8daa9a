package domain

import "context"

// Actions checked by the authorization predicates.
const (
	ActionCheckout      = "checkout"
	ActionManageCart    = "manage cart"
	ActionViewOrder     = "view order"
	ActionListOrders    = "list all orders"
	ActionShipOrder     = "ship order"
	ActionViewHistory   = "view order history"
	ActionManageCatalog = "manage catalog"
)

// Principal is the authenticated caller of a workflow, passed explicitly per request.
type Principal struct {
	UserID string
	Admin  bool
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// CanActFor is true for the user themselves and for administrators.
func (p Principal) CanActFor(userID string) bool {
	return p.Authenticated() && (p.UserID == userID || p.Admin)
}

func RequireAuthenticated(p Principal, action string) error {
	if !p.Authenticated() {
		return &AuthorizationError{Action: action}
	}
	return nil
}

func RequireUser(p Principal, userID, action string) error {
	if !p.CanActFor(userID) {
		return &AuthorizationError{UserID: p.UserID, Action: action}
	}
	return nil
}

func RequireAdmin(p Principal, action string) error {
	if !p.Authenticated() || !p.Admin {
		return &AuthorizationError{UserID: p.UserID, Action: action}
	}
	return nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the zero (anonymous) principal when none is set.
func PrincipalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
