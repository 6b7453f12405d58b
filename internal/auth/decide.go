package auth

import (
	"github.com/deskhub/deskhub/internal/db/models"
)

// Decision is the result of an access decision.
type Decision bool

const (
	// Deny refuses the operation.
	Deny Decision = false
	// Allow permits the operation.
	Allow Decision = true
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	if d {
		return "allow"
	}

	return "deny"
}

// Decide tells whether actor may perform action on resource given the permissions of its role.
// It never fails: anything not explicitly granted is denied.
func Decide(actor Actor, permissions models.Permissions, resource models.Resource, action models.Action) Decision {
	if actor.IsOwner {
		return Allow
	}

	if actor.Role.Bypass() {
		return Allow
	}

	entry, ok := permissions.Lookup(resource)
	if !ok {
		return Deny
	}

	return Decision(entry.Has(action))
}
