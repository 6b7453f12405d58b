package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LocalsActor is the fiber.Locals key holding the Actor of an allowed request.
const LocalsActor = "actor"

// HeaderAccess is set on fallback responses so clients can tell them from regular data.
const HeaderAccess = "X-Access"

// Identify returns the actor resolver of a request.
// It returns ErrUnidentified when the request carries no identity.
type Identify func(c *fiber.Ctx) (ActorResolver, error)

// Require creates fiber middleware that enforces req through guard.
// Allowed requests continue with the actor stored in c.Locals(LocalsActor).
func Require(guard *Guard, identify Identify, req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resolver, err := identify(c)
		if err != nil {
			if errors.Is(err, ErrUnidentified) {
				return Unauthorized(c)
			}

			// let the guard fail closed and account for it
			failed := err
			resolver = ActorFunc(func(context.Context) (Actor, error) { return Actor{}, failed })
		}

		out := guard.Check(c.UserContext(), resolver, req)
		if out.Allowed() {
			c.Locals(LocalsActor, out.Actor)
			return c.Next()
		}

		return Denied(c, out)
	}
}

// Denied writes the response of a denied outcome according to its DenialPolicy.
// The response never tells which permission was missing.
func Denied(c *fiber.Ctx, out Outcome) error {
	switch p := out.Denial.(type) {
	case Fallback:
		c.Set(HeaderAccess, "denied")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": p.Value})
	case Redirect:
		return c.Redirect(p.Target)
	default:
		if out.Err != nil {
			log.Debug().Err(out.Err).Str("path", c.Path()).Msg("refusing request after resolution failure")
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"kind": "forbidden", "message": "access denied"},
		})
	}
}

// Unauthorized writes the response for requests without identity.
func Unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"kind": "unauthorized", "message": "authentication required"},
	})
}

// ActorFromLocals returns the actor stored by Require.
func ActorFromLocals(c *fiber.Ctx) (Actor, bool) {
	actor, ok := c.Locals(LocalsActor).(Actor)

	return actor, ok
}
