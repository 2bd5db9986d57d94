// Package identity is the boundary to the external identity provider. The
// messaging core trusts the opaque user handle (uid) carried by the bearer
// token and never issues or stores credentials itself.
package identity

import "context"

// Identity is the authenticated caller as asserted by the identity
// provider: an opaque uid plus which side of the platform it signed in as.
type Identity struct {
	UID  string
	Kind string
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity injects the verified identity into the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext reads the identity set by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
