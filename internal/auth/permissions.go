package auth

import (
	"github.com/deskhub/deskhub/internal/db/models"
)

// Gate selects how a requirement is evaluated.
type Gate int

const (
	// GateResource evaluates the resource and action through Decide.
	GateResource Gate = iota
	// GateOwnerOnly allows only the tenant owner.
	GateOwnerOnly
	// GateAdminOnly allows the tenant owner and admins.
	GateAdminOnly
)

// String implements fmt.Stringer.
func (g Gate) String() string {
	switch g {
	case GateOwnerOnly:
		return "owner_only"
	case GateAdminOnly:
		return "admin_only"
	default:
		return "resource"
	}
}

// DenialPolicy is what happens instead of the protected operation on Deny.
// It is one of Fallback, Redirect or Degrade.
type DenialPolicy interface {
	denialPolicy()
}

// Fallback answers a denial with Value.
type Fallback struct {
	Value any
}

// Redirect answers a denial by sending the caller to Target.
type Redirect struct {
	Target string
}

// Degrade answers a denial with a neutral refusal.
type Degrade struct{}

func (Fallback) denialPolicy() {}
func (Redirect) denialPolicy() {}
func (Degrade) denialPolicy()  {}

// DenialFor picks the policy from the optional fallback value and redirect target.
// A fallback wins over a redirect, with neither the result degrades.
func DenialFor(fallback any, redirectTarget string) DenialPolicy {
	switch {
	case fallback != nil:
		return Fallback{Value: fallback}
	case redirectTarget != "":
		return Redirect{Target: redirectTarget}
	default:
		return Degrade{}
	}
}

// Requirement describes what a guarded operation needs.
type Requirement struct {
	Resource models.Resource
	Action   models.Action
	Gate     Gate
	// Denial defaults to Degrade when nil.
	Denial DenialPolicy
}

// Need returns a requirement for action on resource.
func Need(resource models.Resource, action models.Action) Requirement {
	return Requirement{Resource: resource, Action: action, Gate: GateResource}
}

// OwnerOnly returns a requirement only the tenant owner satisfies.
func OwnerOnly() Requirement {
	return Requirement{Gate: GateOwnerOnly}
}

// AdminOnly returns a requirement the tenant owner and admins satisfy.
func AdminOnly() Requirement {
	return Requirement{Gate: GateAdminOnly}
}

// Otherwise returns a copy of r using policy on denial.
func (r Requirement) Otherwise(policy DenialPolicy) Requirement {
	r.Denial = policy

	return r
}

func (r Requirement) denial() DenialPolicy {
	if r.Denial == nil {
		return Degrade{}
	}

	return r.Denial
}
