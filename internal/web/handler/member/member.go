// Package member provides the JSON API for provisioning members and assigning their roles.
package member

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/auth"
	memberstore "github.com/deskhub/deskhub/internal/db/controller/member"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/web/handler"
	"github.com/deskhub/deskhub/internal/web/response"
)

// Path is the base path of the member API.
const Path = handler.APIPath + "/members"

// CreateRequest is the body of POST /members.
type CreateRequest struct {
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Role   models.RoleTag `json:"role"`
	RoleID string         `json:"roleId"`
}

// AssignRequest is the body of PUT /members/:id/role. An empty roleId removes the role.
type AssignRequest struct {
	RoleID string `json:"roleId"`
}

// Service serves the member API.
type Service struct {
	handler.Service
	members handler.Members
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Everything here is reserved to admins.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		log.Error().Msg(handler.ErrNilDepsFatalLogMsg)
		return handler.ErrNilDeps
	}

	s.members = deps.Members

	admin := deps.Require(auth.AdminOnly())

	app.Post(Path, admin, s.Create)
	app.Put(Path+"/:id/role", admin, s.AssignRole)

	return nil
}

// Create provisions a member. Without a role id the tenant default role is assigned.
// Owners can only be created by the seed, never through the API.
func (s *Service) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromLocals(c)
	if !ok {
		return response.Error(c, auth.ErrUnidentified)
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body"))
	}

	if req.Role == models.RoleTagOwner {
		return response.Error(c, apperr.Validation("owner members can not be created"))
	}

	m, err := s.members.Create(c.UserContext(), actor.TenantID, memberstore.CreateInput{
		Email:  req.Email,
		Name:   req.Name,
		Role:   req.Role,
		RoleID: req.RoleID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusCreated, m)
}

// AssignRole sets or clears the custom role of a member.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromLocals(c)
	if !ok {
		return response.Error(c, auth.ErrUnidentified)
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, apperr.Validation("invalid request body"))
	}

	m, err := s.members.AssignRole(c.UserContext(), actor.TenantID, c.Params("id"), req.RoleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusOK, m)
}
