package authz

import "context"

// Identity is the upstream-authenticated caller: who they are and which role
// they hold. This package treats it as an immutable input.
type Identity struct {
	ID   string
	Role Role
}

type identityContextKey struct{}

// WithIdentity stores the identity in the request context.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, ident)
}

// IdentityFromContext extracts the identity, or nil when unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityContextKey{}).(*Identity)
	return ident
}
