package context

import (
	"context"
)

// Role is the store role an authenticated actor operates under.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCashier      Role = "cashier"
	RoleStockManager Role = "stock_manager"
)

// ValidRole reports whether the role is one of the known store roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleCashier, RoleStockManager:
		return true
	}
	return false
}

// Actor contains the authenticated user identity supplied by the auth
// boundary. Every mutating operation stamps Actor.UserID into created_by.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

type actorContextKey struct{}

// WithActor adds the authenticated actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns the actor from context, or nil if the request is
// unauthenticated.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetUserID returns the acting user id from context or empty string.
func GetUserID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}

// GetRole returns the acting user role from context or empty string.
func GetRole(ctx context.Context) Role {
	if a := GetActor(ctx); a != nil {
		return a.Role
	}
	return ""
}
