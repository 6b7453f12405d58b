// Package fiber provides the zerolog access log middleware of the web service.
package fiber

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/logger"
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError is set on responses the error handler could not write.
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string

	// Headers maps request headers to the field they are logged as, e.g. X-Tenant-ID to tenant.
	Headers map[string]string
}

// ConfigDefault is the default config.
var ConfigDefault = Config{
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

// accessWriters returns the configured outputs of the access log.
func accessWriters(cfg *logger.Log) []io.Writer {
	var writers []io.Writer

	if cfg.File.Enabled {
		if w := newRollingAccessFile(cfg); w != nil {
			writers = append(writers, w)
		}
	}

	// console output needs both the general and the access log switch
	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		if cfg.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return writers
}

// New creates the access log middleware. Each request is written as one line after
// the handler chain and the app error handler ran, so the final status is logged.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	writers := accessWriters(&cfg.Config)
	if len(writers) == 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	access := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		latency := time.Since(start)
		c.Set("Server-Timing", fmt.Sprintf("app;dur=%.3f", float64(latency.Microseconds())/1000)) //nolint:mnd

		if cfg.Config.DisableCheckAlive && cfg.CheckAliveURI != "" && c.Path() == cfg.CheckAliveURI {
			return nil
		}

		e := access.Log().
			Str("ip", c.IP()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", latency).
			Str("method", c.Method()).
			// the original url keeps duplicate slashes fasthttp normalises away
			Str("uri", c.OriginalURL()).
			Str("host", c.Hostname())

		for _, h := range []struct{ header, field string }{
			{fiber.HeaderXForwardedFor, "forwarded_for"},
			{fiber.HeaderUserAgent, "user_agent"},
			{fiber.HeaderReferer, "referer"},
		} {
			if v := c.Get(h.header); v != "" {
				e.Str(h.field, v)
			}
		}

		for header, field := range cfg.Headers {
			if v := c.Get(header); v != "" {
				e.Str(field, v)
			}
		}

		if chainErr != nil {
			e.Err(chainErr)
		}

		e.Send()

		return nil
	}
}

// newRollingAccessFile returns the lumberjack access log file.
func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	return logger.NewRollingFile(cfg.File.Path, cfg.File.Access)
}
