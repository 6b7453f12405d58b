// Package web wires the fiber application: middleware, health and metrics endpoints and the API handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/config"
	accesslog "github.com/deskhub/deskhub/internal/logger/adapter/fiber"
	"github.com/deskhub/deskhub/internal/web/handler"
	"github.com/deskhub/deskhub/internal/web/handler/access"
	"github.com/deskhub/deskhub/internal/web/handler/dashboard"
	"github.com/deskhub/deskhub/internal/web/handler/member"
	"github.com/deskhub/deskhub/internal/web/handler/role"
	"github.com/deskhub/deskhub/internal/web/identity"
	"github.com/deskhub/deskhub/internal/web/response"
)

// MetricsPath serves the Prometheus metrics.
const MetricsPath = "/metrics"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error)

	go func() {
		err := s.App.Listen(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("fiber listen error")
		}

		doneFiber <- err
	}()

	return <-doneFiber // wait for fiber to stop
}

// Alive reports whether the liveness endpoint reports healthy.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown blocks until SIGINT or SIGTERM arrive or the server stops on its own.
// On a signal the service is shut down gracefully and the result of stopped is returned.
func (s *Service) WaitShutdown(stopped <-chan error) error {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(irqSig)

	select {
	case err := <-stopped:
		return err
	case sig := <-irqSig:
		log.Info().Msgf("shutdown request (signal: %v)", sig)
	}

	s.Shutdown()

	return <-stopped
}

// Shutdown drains the liveness endpoint and stops the http server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every route.
func New(cfg *config.Config, deps *handler.Deps) (*Service, error) {
	if cfg == nil {
		return nil, handler.ErrNilDeps
	}

	if deps != nil && deps.Identify == nil && deps.Members != nil {
		deps.Identify = identity.New(deps.Members)
	}

	if !deps.Valid() {
		return nil, handler.ErrNilDeps
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "DeskHub",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   response.Error,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: cfg.Webserver.CheckAliveURI,
		Headers:       map[string]string{identity.HeaderTenant: "tenant", identity.HeaderMember: "member"},
	}))

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.Webserver.FastShutDown,
	}
	service.alive.Store(true)

	checkAlive := cfg.Webserver.CheckAliveURI
	if checkAlive == "" {
		checkAlive = "/livez"
	}

	app.Get(checkAlive, func(c *fiber.Ctx) error {
		if !service.Alive() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// handlers register their own routes with their guards
	for _, h := range []handler.Service{
		&access.Handler,
		&dashboard.Handler,
		&member.Handler,
		&role.Handler,
	} {
		if err := h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	// redirect root to dashboard
	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(dashboard.Path)
	})

	return service, nil
}
