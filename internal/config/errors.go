package config

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmptyURL is returned when Webserver.URL is missing.
	ErrEmptyURL = errors.New("config: Webserver.URL is required")

	// ErrWebServerPortCanNotBeZero is returned when Webserver.Port is missing.
	ErrWebServerPortCanNotBeZero = errors.New("config: Webserver.Port is required")

	// ErrUnknownGormEngine is returned for a DB.GormEngine other than sqlite, mysql or postgres.
	ErrUnknownGormEngine = errors.New("config: DB.GormEngine must be sqlite, mysql or postgres")

	// ErrUnknownKey is returned when a source contains keys the Config does not know.
	ErrUnknownKey = errors.New("config: unknown key")
)
