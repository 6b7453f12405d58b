// Package access exposes access decisions and the permission-gated navigation to the UI.
package access

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/web/handler"
	"github.com/deskhub/deskhub/internal/web/navigation"
	"github.com/deskhub/deskhub/internal/web/response"
)

const (
	// Path is the base path of the access API.
	Path = handler.APIPath + "/access"

	// CheckPath answers a single resource/action question for the caller.
	CheckPath = Path + "/check"

	// NavigationPath lists the dashboard sections visible to the caller.
	NavigationPath = Path + "/navigation"

	// PermissionsPath returns the effective permission matrix of the caller.
	PermissionsPath = Path + "/permissions"
)

// CheckResult is the answer of CheckPath.
type CheckResult struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Decision string `json:"decision"`
}

// Service serves the access API.
type Service struct {
	handler.Service
	guard    *auth.Guard
	identify auth.Identify
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		log.Error().Msg(handler.ErrNilDepsFatalLogMsg)
		return handler.ErrNilDeps
	}

	s.guard = deps.Guard
	s.identify = deps.Identify

	app.Get(CheckPath, s.Check)
	app.Get(NavigationPath,
		deps.Require(auth.Need(models.ResourceDashboard, models.ActionRead).
			Otherwise(auth.Fallback{Value: navigation.Empty()})),
		s.Navigation,
	)
	app.Get(PermissionsPath, s.Permissions)

	return nil
}

// Check decides ?resource=&action= for the caller.
// Unknown resources or actions are denied, never rejected.
func (s *Service) Check(c *fiber.Ctx) error {
	resolver, err := s.identify(c)
	if errors.Is(err, auth.ErrUnidentified) {
		return auth.Unauthorized(c)
	}

	result := CheckResult{
		Resource: c.Query("resource"),
		Action:   c.Query("action"),
		Decision: auth.Deny.String(),
	}

	resource, okResource := models.ParseResource(result.Resource)
	action, okAction := models.ParseAction(result.Action)

	if err != nil || !okResource || !okAction {
		return response.OK(c, fiber.StatusOK, result)
	}

	out := s.guard.Check(c.UserContext(), resolver, auth.Need(resource, action))
	result.Decision = out.Decision.String()

	return response.OK(c, fiber.StatusOK, result)
}

// Navigation returns the sections the caller may read.
func (s *Service) Navigation(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromLocals(c)
	if !ok {
		return response.Error(c, auth.ErrUnidentified)
	}

	_, perms, err := s.guard.Permissions(c.UserContext(), auth.Static(actor))
	if err != nil {
		return response.Error(c, err)
	}

	nav := navigation.Build(actor, perms, c.Query("active", "dashboard")).
		AddBreadcrumb("Home", handler.RootPath, false).
		AddBreadcrumb("Dashboard", "/dashboard", true)

	return response.OK(c, fiber.StatusOK, nav)
}

// Permissions returns the effective actions of the caller per resource.
func (s *Service) Permissions(c *fiber.Ctx) error {
	resolver, err := s.identify(c)
	if errors.Is(err, auth.ErrUnidentified) {
		return auth.Unauthorized(c)
	}

	if err != nil {
		resolver = failedIdentity(err)
	}

	actor, perms, err := s.guard.Permissions(c.UserContext(), resolver)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, fiber.StatusOK, navigation.Matrix(actor, perms))
}

// failedIdentity lets the guard report an identity lookup failure like any other resolution error.
func failedIdentity(err error) auth.ActorResolver {
	return auth.ActorFunc(func(context.Context) (auth.Actor, error) {
		return auth.Actor{}, err
	})
}
