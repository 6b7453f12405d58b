// Package auth provides the authorization core of the dashboard.
//
// The model is a flat resource x action matrix. A tenant defines roles, each
// role grants a set of actions per resource, and every member is assigned at
// most one role. Two built-in role tags, owner and admin, bypass the matrix.
//
// # Access Decision
//
// Decide is a pure function. It evaluates, in this order:
//   - the owner flag of the actor (Allow)
//   - the owner or admin role tag (Allow)
//   - the permission entry for the requested resource (missing entry: Deny)
//   - literal membership of the requested action in that entry
//
// No action implies another one; manage does not imply read.
// Unknown resources or actions never match and are denied.
//
// # Guard
//
// Guard wraps a protected operation. It resolves the actor, looks up the role
// of the actor, calls Decide and reports an Outcome. Resolution runs under a
// timeout and every failure while resolving is turned into a Deny carrying a
// resolution error. A Requirement can also use the OwnerOnly or AdminOnly gate
// modes, which are evaluated before any role lookup.
//
// On Deny the Requirement's DenialPolicy tells the caller what to do instead:
//   - Fallback: respond with the given value
//   - Redirect: send the caller to the given target
//   - Degrade: respond with a neutral refusal
//
// # Middleware
//
// Require turns a Guard and a Requirement into a fiber handler.
//
// Example usage:
//
//	guard := auth.NewGuard(roles, 2*time.Second)
//
//	app.Get("/dashboard",
//		auth.Require(guard, identity.Resolve, auth.Need(models.ResourceDashboard, models.ActionRead).
//			Otherwise(auth.Redirect{Target: "/access-denied"})),
//		handler,
//	)
package auth
