package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/config"
	"github.com/deskhub/deskhub/internal/db/controller/member"
	"github.com/deskhub/deskhub/internal/db/controller/role"
	"github.com/deskhub/deskhub/internal/db/models"
)

// Members is the member store as seen by the handlers.
type Members interface {
	Get(ctx context.Context, tenantID, id string) (*models.Member, error)
	Create(ctx context.Context, tenantID string, in member.CreateInput) (*models.Member, error)
	AssignRole(ctx context.Context, tenantID, memberID, roleID string) (*models.Member, error)
}

// Deps bundles everything a handler needs to register its routes.
type Deps struct {
	Cfg      *config.Config
	Roles    role.Repository
	Members  Members
	Guard    *auth.Guard
	Identify auth.Identify
}

// Valid reports whether all dependencies are set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.Roles != nil && d.Members != nil && d.Guard != nil && d.Identify != nil
}

// Require is shorthand for auth.Require with the guard and identity of d.
func (d *Deps) Require(req auth.Requirement) fiber.Handler {
	return auth.Require(d.Guard, d.Identify, req)
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app fiber.Router, deps *Deps) error
}
