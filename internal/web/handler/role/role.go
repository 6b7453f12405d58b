// Package role provides the JSON API for managing the custom roles of a tenant.
package role

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/auth"
	rolestore "github.com/deskhub/deskhub/internal/db/controller/role"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/web/handler"
	"github.com/deskhub/deskhub/internal/web/response"
)

const (
	// Path is the base path of the role API.
	Path = handler.APIPath + "/roles"
)

// CreateRequest is the body of POST /roles.
type CreateRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Permissions models.Permissions `json:"permissions"`
	IsDefault   bool               `json:"isDefault"`
}

// UpdateRequest is the body of PATCH /roles/:id. Absent fields are left untouched.
type UpdateRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Permissions *models.Permissions `json:"permissions"`
	IsDefault   *bool               `json:"isDefault"`
}

// Service serves the role API.
type Service struct {
	handler.Service
	roles rolestore.Repository
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Reading needs settings:read, changes are reserved to admins.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		log.Error().Msg(handler.ErrNilDepsFatalLogMsg)
		return handler.ErrNilDeps
	}

	s.roles = deps.Roles

	read := deps.Require(auth.Need(models.ResourceSettings, models.ActionRead))
	admin := deps.Require(auth.AdminOnly())

	app.Get(Path, read, s.List)
	app.Get(Path+"/:id", read, s.Get)
	app.Post(Path, admin, s.Create)
	app.Patch(Path+"/:id", admin, s.Update)
	app.Delete(Path+"/:id", admin, s.Delete)

	return nil
}

// tenant returns the tenant of the allowed actor.
func tenant(c *fiber.Ctx) (string, error) {
	actor, ok := auth.ActorFromLocals(c)
	if !ok {
		return "", auth.ErrUnidentified
	}

	return actor.TenantID, nil
}

// List returns all roles of the caller's tenant.
func (s *Service) List(c *fiber.Ctx) error {
	tenantID, err := tenant(c)
	if err != nil {
		return response.Error(c, err)
	}

	roles, err := s.roles.List(c.UserContext(), tenantID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusOK, roles)
}

// Get returns one role.
func (s *Service) Get(c *fiber.Ctx) error {
	tenantID, err := tenant(c)
	if err != nil {
		return response.Error(c, err)
	}

	r, err := s.roles.Get(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusOK, r)
}

// Create adds a role.
func (s *Service) Create(c *fiber.Ctx) error {
	tenantID, err := tenant(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req CreateRequest
	if err = c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body"))
	}

	r, err := s.roles.Create(c.UserContext(), tenantID, rolestore.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusCreated, r)
}

// Update changes a role.
func (s *Service) Update(c *fiber.Ctx) error {
	tenantID, err := tenant(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req UpdateRequest
	if err = c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body"))
	}

	r, err := s.roles.Update(c.UserContext(), tenantID, c.Params("id"), rolestore.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusOK, r)
}

// Delete removes a role. Members holding it lose their permissions at once.
func (s *Service) Delete(c *fiber.Ctx) error {
	tenantID, err := tenant(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err = s.roles.Delete(c.UserContext(), tenantID, c.Params("id")); err != nil {
		return response.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
