package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/db/models"
)

// DefaultTimeout bounds actor and role resolution when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// State is the progress of a single guarded invocation.
type State int

const (
	// StatePending is the state before anything was resolved.
	StatePending State = iota
	// StateResolvingActor is the state while the actor and its role are looked up.
	StateResolvingActor
	// StateEvaluating is the state while the decision is computed.
	StateEvaluating
	// StateAllowed is terminal: the operation may run.
	StateAllowed
	// StateDenied is terminal: the denial policy applies.
	StateDenied
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolvingActor:
		return "resolving_actor"
	case StateEvaluating:
		return "evaluating"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Outcome is the result of a guarded invocation.
type Outcome struct {
	Decision Decision
	// State is StateAllowed or StateDenied once Check returns.
	State State
	// Actor is the resolved actor, zero if resolution failed.
	Actor Actor
	// Denial is the policy to apply when Decision is Deny.
	Denial DenialPolicy
	// Reason is a short, internal explanation. Never show it to the caller.
	Reason string
	// Err is the resolution error that caused a Deny, if any.
	Err error
}

// Allowed reports whether the operation may run.
func (o Outcome) Allowed() bool {
	return o.Decision == Allow
}

// Guard enforces requirements before protected operations run.
type Guard struct {
	roles   RoleFinder
	timeout time.Duration
}

// NewGuard returns a guard loading roles from roles. A non-positive timeout uses DefaultTimeout.
func NewGuard(roles RoleFinder, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Guard{roles: roles, timeout: timeout}
}

// Check resolves the actor and decides req. It never returns Allow after a resolution failure.
func (g *Guard) Check(ctx context.Context, resolver ActorResolver, req Requirement) Outcome {
	out := Outcome{State: StatePending, Denial: req.denial()}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out.State = StateResolvingActor

	actor, err := resolveActor(ctx, resolver)
	if err != nil {
		return g.fail(out, req, err)
	}

	out.Actor = actor

	switch req.Gate {
	case GateOwnerOnly:
		out.State = StateEvaluating
		return g.finish(out, req, Decision(actor.IsOwner), "owner only")
	case GateAdminOnly:
		out.State = StateEvaluating
		return g.finish(out, req, Decision(actor.IsOwner || actor.Role == models.RoleTagAdmin), "admin only")
	case GateResource:
	}

	// owners and admins never need their role
	if actor.IsOwner || actor.Role.Bypass() {
		out.State = StateEvaluating
		return g.finish(out, req, Decide(actor, nil, req.Resource, req.Action), "bypass")
	}

	perms, err := g.rolePermissions(ctx, actor)
	if err != nil {
		return g.fail(out, req, err)
	}

	out.State = StateEvaluating

	return g.finish(out, req, Decide(actor, perms, req.Resource, req.Action), "permission matrix")
}

// Permissions resolves the actor and the permissions of its role under the same
// timeout and fail-closed reporting as Check. Owners and admins get nil permissions.
// Every returned error is a resolution error.
func (g *Guard) Permissions(ctx context.Context, resolver ActorResolver) (Actor, models.Permissions, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	actor, err := resolveActor(ctx, resolver)
	if err != nil {
		reportFailure(Actor{}, gateMatrix, "", "", err)
		return Actor{}, nil, err
	}

	if actor.IsOwner || actor.Role.Bypass() {
		return actor, nil, nil
	}

	perms, err := g.rolePermissions(ctx, actor)
	if err != nil {
		reportFailure(actor, gateMatrix, "", "", err)
		return actor, nil, err
	}

	return actor, perms, nil
}

func resolveActor(ctx context.Context, resolver ActorResolver) (Actor, error) {
	if resolver == nil {
		return Actor{}, apperr.Resolution(ErrNilResolver, "resolve actor")
	}

	actor, err := resolver.ResolveActor(ctx)
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		return Actor{}, apperr.Resolution(err, "resolve actor")
	}

	return actor, nil
}

func (g *Guard) rolePermissions(ctx context.Context, actor Actor) (models.Permissions, error) {
	if actor.RoleID == "" {
		return nil, apperr.Resolution(ErrNoRole, "resolve role of actor %s", actor.ID)
	}

	if g.roles == nil {
		return nil, apperr.Resolution(errors.New("no role finder configured"), "resolve role")
	}

	role, err := g.roles.Get(ctx, actor.TenantID, actor.RoleID)
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		return nil, apperr.Resolution(err, "resolve role %s of actor %s", actor.RoleID, actor.ID)
	}

	return role.Permissions, nil
}

// Do runs op only if req is satisfied. On Deny op is not called and the outcome tells what to do instead.
// The error is the one returned by op.
func (g *Guard) Do(ctx context.Context, resolver ActorResolver, req Requirement, op func(ctx context.Context) error) (Outcome, error) {
	out := g.Check(ctx, resolver, req)
	if !out.Allowed() {
		return out, nil
	}

	return out, op(ctx)
}

func (g *Guard) finish(out Outcome, req Requirement, d Decision, reason string) Outcome {
	out.Decision = d
	out.Reason = reason

	if d == Allow {
		out.State = StateAllowed
	} else {
		out.State = StateDenied

		log.Debug().Str("tenant", out.Actor.TenantID).Str("actor", out.Actor.ID).
			Str("gate", req.Gate.String()).Str("resource", string(req.Resource)).Str("action", string(req.Action)).
			Msg("access denied")
	}

	observeDecision(req, d)

	return out
}

func (g *Guard) fail(out Outcome, req Requirement, err error) Outcome {
	out.Decision = Deny
	out.State = StateDenied
	out.Reason = "resolution failed"
	out.Err = err

	reportFailure(out.Actor, req.Gate.String(), req.Resource, req.Action, err)
	observeDecision(req, Deny)

	return out
}

func reportFailure(actor Actor, gate string, resource models.Resource, action models.Action, err error) {
	log.Warn().Err(err).Str("tenant", actor.TenantID).Str("actor", actor.ID).
		Str("gate", gate).Str("resource", string(resource)).Str("action", string(action)).
		Msg("authorization failed closed")

	observeResolutionError(gate)
}
