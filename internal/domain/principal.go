package domain

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the caller identity attached to a request by the transport layer.
// Trusted is set for internal origins (admin token, trusted network) and grants
// administrative operations; UserID may still be set for per-user calls.
type Principal struct {
	UserID  uuid.UUID
	Trusted bool
}

// HasUser reports whether the principal can act on per-user resources
func (p Principal) HasUser() bool {
	return p.UserID != uuid.Nil
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
