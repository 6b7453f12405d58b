package models

import (
	"slices"
	"strings"
)

// Resource is a protected area of the dashboard.
// The set is closed: values outside of Resources() are never granted.
type Resource string

const (
	// ResourceConversations covers the shared inbox and chat threads.
	ResourceConversations Resource = "conversations"
	// ResourceTemplates covers message templates.
	ResourceTemplates Resource = "templates"
	// ResourceDashboard covers the dashboard landing page and its widgets.
	ResourceDashboard Resource = "dashboard"
	// ResourceAutomations covers automation flows.
	ResourceAutomations Resource = "automations"
	// ResourceContacts covers the contact book.
	ResourceContacts Resource = "contacts"
	// ResourceIntegrations covers third-party integrations.
	ResourceIntegrations Resource = "integrations"
	// ResourceAnalytics covers reports and analytics.
	ResourceAnalytics Resource = "analytics"
	// ResourceSettings covers company settings, including roles.
	ResourceSettings Resource = "settings"
)

// Action is an operation on a Resource.
// Actions are independent flags: manage does not imply read, write or delete.
type Action string

const (
	// ActionRead allows viewing.
	ActionRead Action = "read"
	// ActionWrite allows creating and editing.
	ActionWrite Action = "write"
	// ActionDelete allows removing.
	ActionDelete Action = "delete"
	// ActionManage allows administrative operations on the resource.
	ActionManage Action = "manage"
)

// Resources returns all known resources in display order.
func Resources() []Resource {
	return []Resource{
		ResourceConversations,
		ResourceTemplates,
		ResourceDashboard,
		ResourceAutomations,
		ResourceContacts,
		ResourceIntegrations,
		ResourceAnalytics,
		ResourceSettings,
	}
}

// Actions returns all known actions in display order.
func Actions() []Action {
	return []Action{ActionRead, ActionWrite, ActionDelete, ActionManage}
}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	return slices.Contains(Resources(), r)
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return slices.Contains(Actions(), a)
}

// ParseResource converts a string into a Resource. The second value is false for unknown input.
func ParseResource(s string) (Resource, bool) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))

	return r, r.Valid()
}

// ParseAction converts a string into an Action. The second value is false for unknown input.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))

	return a, a.Valid()
}

// actionOrder is used to keep action lists in a stable order.
func actionOrder(a Action) int {
	if i := slices.Index(Actions(), a); i >= 0 {
		return i
	}

	return len(Actions())
}

// Permission grants a set of actions on one resource.
// It is embedded in a Role and never stored on its own.
type Permission struct {
	// Resource the actions apply to.
	Resource Resource `json:"resource" validate:"required,resource"`
	// Actions granted on the resource. Never empty once stored.
	Actions []Action `json:"actions" validate:"required,min=1,dive,action"`
}

// Has reports whether the action is literally part of this permission.
func (p Permission) Has(action Action) bool {
	return slices.Contains(p.Actions, action)
}

// Permissions is the permission set of a role, unique by resource.
type Permissions []Permission

// Lookup returns the entry for resource, if any.
func (ps Permissions) Lookup(resource Resource) (Permission, bool) {
	for _, p := range ps {
		if p.Resource == resource {
			return p, true
		}
	}

	return Permission{}, false
}

// Allows reports whether the set literally contains action on resource.
func (ps Permissions) Allows(resource Resource, action Action) bool {
	p, ok := ps.Lookup(resource)

	return ok && p.Has(action)
}

// Clone returns a deep copy.
func (ps Permissions) Clone() Permissions {
	if ps == nil {
		return nil
	}

	out := make(Permissions, len(ps))
	for i, p := range ps {
		out[i] = Permission{Resource: p.Resource, Actions: slices.Clone(p.Actions)}
	}

	return out
}

// Set replaces the actions for resource. Passing no actions removes the entry.
func (ps Permissions) Set(resource Resource, actions ...Action) Permissions {
	out := make(Permissions, 0, len(ps)+1)
	replaced := false

	for _, p := range ps {
		if p.Resource != resource {
			out = append(out, p)
			continue
		}

		replaced = true

		if len(actions) > 0 {
			out = append(out, Permission{Resource: resource, Actions: slices.Clone(actions)})
		}
	}

	if !replaced && len(actions) > 0 {
		out = append(out, Permission{Resource: resource, Actions: slices.Clone(actions)})
	}

	return out.Normalize()
}

// Grant adds actions to the entry for resource, creating it when missing.
func (ps Permissions) Grant(resource Resource, actions ...Action) Permissions {
	current, _ := ps.Lookup(resource)

	return ps.Set(resource, append(slices.Clone(current.Actions), actions...)...)
}

// Revoke removes actions from the entry for resource.
// Revoking the last action removes the entry.
func (ps Permissions) Revoke(resource Resource, actions ...Action) Permissions {
	current, ok := ps.Lookup(resource)
	if !ok {
		return ps.Clone()
	}

	kept := slices.DeleteFunc(slices.Clone(current.Actions), func(a Action) bool {
		return slices.Contains(actions, a)
	})

	return ps.Set(resource, kept...)
}

// Normalize dedupes and orders actions, drops entries without actions
// and orders entries by resource. Entries sharing a resource are kept as they are
// so validation can still reject them.
func (ps Permissions) Normalize() Permissions {
	out := make(Permissions, 0, len(ps))

	for _, p := range ps {
		actions := slices.Clone(p.Actions)
		slices.SortFunc(actions, func(a, b Action) int {
			if c := actionOrder(a) - actionOrder(b); c != 0 {
				return c
			}

			return strings.Compare(string(a), string(b))
		})
		actions = slices.Compact(actions)

		if len(actions) == 0 {
			continue
		}

		out = append(out, Permission{Resource: p.Resource, Actions: actions})
	}

	slices.SortStableFunc(out, func(a, b Permission) int {
		return strings.Compare(string(a.Resource), string(b.Resource))
	})

	return out
}

// DuplicateResource returns the first resource that appears more than once.
func (ps Permissions) DuplicateResource() (Resource, bool) {
	seen := make(map[Resource]struct{}, len(ps))

	for _, p := range ps {
		if _, ok := seen[p.Resource]; ok {
			return p.Resource, true
		}

		seen[p.Resource] = struct{}{}
	}

	return "", false
}
