// Package auth implements the authorization gate: resolving the caller's
// API key to an operator identity, rejecting disabled operators, and gating
// mutations on the capability matrix.
package auth

import "context"

// Identity is the resolved caller, carried in the request context for the
// lifetime of the request.
type Identity struct {
	UUID             string
	Name             string
	Disabled         bool
	ManageOperators  bool
	ManageBlacklist  bool
	IsClient         bool
	IsMaster         bool
}

// HasCapability reports whether the identity holds the named capability.
// The master operator implicitly satisfies every capability.
func (id *Identity) HasCapability(capability string) bool {
	if id == nil {
		return false
	}
	if id.IsMaster {
		return true
	}
	switch capability {
	case CapabilityManageOperators:
		return id.ManageOperators
	case CapabilityManageBlacklist:
		return id.ManageBlacklist
	case CapabilityIsClient:
		return id.IsClient
	default:
		return false
	}
}

const (
	CapabilityManageOperators = "manage_operators"
	CapabilityManageBlacklist = "manage_blacklist"
	CapabilityIsClient        = "is_client"
)

type contextKey int

const identityContextKey contextKey = 1

// NewContext returns a copy of ctx carrying identity.
func NewContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// FromContext extracts the Identity stored by the middleware, or nil if the
// request is unauthenticated.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}
