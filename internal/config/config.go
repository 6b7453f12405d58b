// Package config reads the service configuration from etc/main.toml and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// EnvJSON is the environment variable holding a JSON document merged over the TOML config.
const EnvJSON = "DESKHUB_CONFIG_JSON"

const (
	defaultShutDownTime  = 5
	defaultGuardTimeout  = 2 * time.Second
	defaultRoleCacheSize = 1024
	defaultRoleCacheTTL  = 30 * time.Second
	defaultCheckAliveURI = "/livez"
	defaultSQLitePath    = "deskhub.db"
	defaultDir           = "./etc/"
)

// ReadConfig reads main.toml from dir and applies the JSON document in EnvJSON on top.
// Unknown keys in either source are rejected so typos do not silently fall back to defaults.
func ReadConfig(dir string) (Config, error) {
	var c Config

	if dir == "" {
		dir = defaultDir
	}

	md, err := toml.DecodeFile(filepath.Join(dir, "main.toml"), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrUnknownKey, "main.toml: %v", undecoded)
	}

	if override := os.Getenv(EnvJSON); override != "" {
		if err = mergeJSON(&c, override); err != nil {
			return Config{}, err
		}
	}

	return c, validate(&c)
}

// mergeJSON decodes doc over c. Fields missing in doc keep their value.
func mergeJSON(c *Config, doc string) error {
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.DisallowUnknownFields()

	if err := dec.Decode(c); err != nil {
		return errors.Wrap(err, "failed to read "+EnvJSON)
	}

	return nil
}

// DumpConfig renders c as TOML.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON renders c as indented JSON.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the service can not start without and fills in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.CheckAliveURI == "" {
		c.Webserver.CheckAliveURI = defaultCheckAliveURI
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineSQLite, EngineMySQL, EnginePostgres:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.DB.GormEngine == EngineSQLite && c.DB.Path == "" {
		c.DB.Path = defaultSQLitePath
	}

	if c.Auth.GuardTimeout.Duration <= 0 {
		c.Auth.GuardTimeout.Duration = defaultGuardTimeout
	}

	if c.Auth.RoleCache.Size <= 0 {
		c.Auth.RoleCache.Size = defaultRoleCacheSize
	}

	if c.Auth.RoleCache.TTL.Duration <= 0 {
		c.Auth.RoleCache.TTL.Duration = defaultRoleCacheTTL
	}

	return nil
}
