// Package daemon opens the database, builds the stores and the guard and runs the web service.
package daemon

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/config"
	"github.com/deskhub/deskhub/internal/db/controller/member"
	"github.com/deskhub/deskhub/internal/db/controller/role"
	"github.com/deskhub/deskhub/internal/db/dsn"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/logger/adapter/stdlogger"
	"github.com/deskhub/deskhub/internal/web"
	"github.com/deskhub/deskhub/internal/web/handler"
	"github.com/deskhub/deskhub/internal/web/identity"
)

const slowQuery = 200 * time.Millisecond

// ErrConfigNil is returned when the daemon is created without configuration.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service

	// DB is the opened and migrated database.
	DB *gorm.DB
	// Roles is the role repository, cached when enabled in the config.
	Roles role.Repository
	// Members is the member store.
	Members *member.Store
	// Guard enforces access on every protected route.
	Guard *auth.Guard
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	stopped := make(chan error, 1)

	go func() {
		stopped <- d.webService.Start(addr)
	}()

	log.Info().Str("addr", addr).Str("url", d.cfg.Webserver.URL).Msg("web service started")

	return d.webService.WaitShutdown(stopped)
}

// Open connects to the configured database engine and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case config.EnginePostgres:
		dialector = postgres.Open(dsn.Create(cfg))
	case config.EngineSQLite, "":
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		return nil, errors.Wrap(config.ErrUnknownGormEngine, cfg.DB.GormEngine)
	}

	level := gormlogger.Warn
	if cfg.DevMode {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,

		Logger: gormlogger.New(stdlogger.NewComponent("gorm"), gormlogger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return db, nil
}

// Build creates the stores and the guard on top of an opened database.
func Build(cfg *config.Config, db *gorm.DB) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	store, err := role.New(db)
	if err != nil {
		return nil, err
	}

	var roles role.Repository = store

	if cfg.Auth.RoleCache.Enabled {
		roles = role.NewCache(store, cfg.Auth.RoleCache.Size, cfg.Auth.RoleCache.TTL.Duration)

		log.Warn().
			Int("size", cfg.Auth.RoleCache.Size).
			Dur("ttl", cfg.Auth.RoleCache.TTL.Duration).
			Msg("role cache enabled: only run a single instance against this database")
	}

	members, err := member.New(db, roles)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:     cfg,
		DB:      db,
		Roles:   roles,
		Members: members,
		Guard:   auth.NewGuard(roles, cfg.Auth.GuardTimeout.Duration),
	}, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	d, err := Build(cfg, db)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.Enabled {
		if err = seed(cfg, db, d.Roles); err != nil {
			return nil, errors.Wrap(err, "failed to seed database")
		}
	}

	d.webService, err = web.New(cfg, &handler.Deps{
		Cfg:      cfg,
		Roles:    d.Roles,
		Members:  d.Members,
		Guard:    d.Guard,
		Identify: identity.New(d.Members),
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}
