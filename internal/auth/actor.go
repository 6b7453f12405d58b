package auth

import (
	"context"

	"github.com/deskhub/deskhub/internal/db/models"
)

// Actor is the member an authorization decision is made for.
// It is always passed explicitly and never read from ambient state.
type Actor struct {
	ID       string
	TenantID string
	Role     models.RoleTag
	// RoleID of the assigned custom role, empty when none is assigned.
	RoleID  string
	IsOwner bool
}

// ActorResolver determines the actor of a request.
// Implementations must honour ctx cancellation.
type ActorResolver interface {
	ResolveActor(ctx context.Context) (Actor, error)
}

// ActorFunc adapts a function to ActorResolver.
type ActorFunc func(ctx context.Context) (Actor, error)

// ResolveActor implements ActorResolver.
func (f ActorFunc) ResolveActor(ctx context.Context) (Actor, error) {
	return f(ctx)
}

// Static returns a resolver for an actor that is already known.
func Static(actor Actor) ActorResolver {
	return ActorFunc(func(context.Context) (Actor, error) {
		return actor, nil
	})
}

// ActorFromMember converts a stored member into an Actor.
func ActorFromMember(m *models.Member) Actor {
	return Actor{
		ID:       m.ID,
		TenantID: m.TenantID,
		Role:     m.Role,
		RoleID:   m.RoleID,
		IsOwner:  m.IsOwner,
	}
}

// RoleFinder loads a role of a tenant. Implemented by the role store and its cache.
type RoleFinder interface {
	Get(ctx context.Context, tenantID, id string) (*models.Role, error)
}
