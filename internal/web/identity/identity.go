// Package identity turns the identity headers set by the trusted gateway into actors.
package identity

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/db/models"
)

const (
	// HeaderTenant carries the tenant of the caller.
	HeaderTenant = "X-Tenant-ID"
	// HeaderMember carries the member id of the caller.
	HeaderMember = "X-Member-ID"
)

// MemberFinder loads members. Implemented by the member store.
type MemberFinder interface {
	Get(ctx context.Context, tenantID, id string) (*models.Member, error)
}

// Resolver returns the actor resolver for one member.
// The member is loaded lazily so the lookup runs under the guard's timeout.
func Resolver(members MemberFinder, tenantID, memberID string) auth.ActorResolver {
	return auth.ActorFunc(func(ctx context.Context) (auth.Actor, error) {
		m, err := members.Get(ctx, tenantID, memberID)
		if err != nil {
			return auth.Actor{}, err
		}

		if !m.Active {
			return auth.Actor{}, apperr.Resolution(auth.ErrInactive, "member %s", memberID)
		}

		return auth.ActorFromMember(m), nil
	})
}

// New returns the auth.Identify function reading the gateway headers.
func New(members MemberFinder) auth.Identify {
	return func(c *fiber.Ctx) (auth.ActorResolver, error) {
		tenantID := strings.TrimSpace(c.Get(HeaderTenant))
		memberID := strings.TrimSpace(c.Get(HeaderMember))

		if tenantID == "" || memberID == "" {
			return nil, errors.Wrap(auth.ErrUnidentified, "identity headers missing")
		}

		return Resolver(members, tenantID, memberID), nil
	}
}
