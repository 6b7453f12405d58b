// Package dashboard provides the dashboard entry point and the access denied landing page.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/config"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/web/handler"
	"github.com/deskhub/deskhub/internal/web/response"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"
)

// Page is the payload the UI renders for a page.
type Page struct {
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Home    string `json:"home"`
	Member  string `json:"member,omitempty"`
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
// Denied visitors are redirected to the access denied page.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		log.Error().Msg(handler.ErrNilDepsFatalLogMsg)
		return handler.ErrNilDeps
	}

	s.cfg = deps.Cfg

	app.Get(Path,
		deps.Require(auth.Need(models.ResourceDashboard, models.ActionRead).
			Otherwise(auth.Redirect{Target: handler.AccessDeniedPath})),
		s.Get,
	)
	app.Get(handler.AccessDeniedPath, s.AccessDenied)

	return nil
}

// Get handles the dashboard page.
func (s *Service) Get(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromLocals(c)

	return response.OK(c, fiber.StatusOK, Page{
		Title:  s.cfg.Title,
		Home:   Path,
		Member: actor.ID,
	})
}

// AccessDenied handles the landing page of redirected denials.
func (s *Service) AccessDenied(c *fiber.Ctx) error {
	return response.OK(c, fiber.StatusOK, Page{
		Title:   "Access denied",
		Message: "You do not have access to this page. Ask an administrator of your company for access.",
		Home:    handler.RootPath,
	})
}
