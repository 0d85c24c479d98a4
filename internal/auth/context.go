// internal/auth/context.go
//
// Request-scoped identity.
//
// Context
// -------
// Identity is attached to the request context by the bearer middleware and
// read back by handlers.  The core never reads ambient or global session
// state; every operation receives its caller explicitly through here.
// Role travels as its own field and is never inferred from the value of an
// identifier.
//
// Usage
// -----
//	ctx = auth.WithIdentity(ctx, auth.Identity{EmployeeID: id, Role: role})
//	ident, ok := auth.FromContext(ctx)
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role names used in token claims and route gates.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// Identity is the authenticated caller: who, and in what capacity.
type Identity struct {
	EmployeeID uuid.UUID
	Role       string
}

// identKey is unexported to avoid context-key collisions.
type identKey struct{}

// WithIdentity returns a new context carrying ident.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identKey{}, ident)
}

// FromContext extracts the identity from ctx.  ok == false when no
// authenticated identity is present.
func FromContext(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identKey{}).(Identity)
	return v, ok
}
