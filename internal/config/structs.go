package config

import (
	"github.com/deskhub/deskhub/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	CheckAliveURI  string // liveness endpoint, excluded from the access log if Log.DisableCheckAlive is set
	FastShutDown   bool   // skip the liveness drain period on shutdown
}

// Auth holds the guard settings.
type Auth struct {
	GuardTimeout Duration  // upper bound for actor and role resolution
	RoleCache    RoleCache // in-memory role cache
}

// RoleCache configures the in-memory role cache.
// Only enable it when a single instance serves a database.
type RoleCache struct {
	Enabled bool
	Size    int
	TTL     Duration
}

// Seed configures the demo data created on first start.
type Seed struct {
	Enabled    bool
	TenantName string
	OwnerEmail string
}
