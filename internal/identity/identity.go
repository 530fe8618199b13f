package identity

import (
	"context"
)

// Identity is the authenticated caller resolved for a request.
type Identity struct {
	UserID   int64
	Username string
}

// Provider resolves a session token to the current authenticated
// identity, or reports that none exists. Credential issuance (login,
// password handling) lives behind this boundary and is not part of
// this service.
type Provider interface {
	Resolve(ctx context.Context, token string) (Identity, bool)
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns a new context carrying the resolved identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the authenticated identity from the context, if present.
func FromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return Identity{}, false
	}
	if id, ok := v.(Identity); ok {
		return id, true
	}
	return Identity{}, false
}
