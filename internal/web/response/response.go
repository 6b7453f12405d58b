// Package response writes the JSON envelope used by every API route.
package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub/internal/apperr"
	"github.com/deskhub/deskhub/internal/auth"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Issue `json:"error,omitempty"`
}

// Issue describes a failed request.
type Issue struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// OK writes data with the given status.
func OK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

// Fail writes an error envelope.
func Fail(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(Envelope{Error: &Issue{Kind: kind, Message: message}})
}

// Error maps err to a status code and writes it.
// Messages of unclassified errors are not exposed.
func Error(c *fiber.Ctx, err error) error {
	var fe *fiber.Error

	switch kind := apperr.KindOf(err); {
	case kind == apperr.KindValidation:
		return Fail(c, fiber.StatusBadRequest, string(kind), message(err))
	case kind == apperr.KindNotFound:
		return Fail(c, fiber.StatusNotFound, string(kind), message(err))
	case kind == apperr.KindResolution:
		return Fail(c, fiber.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, auth.ErrUnidentified):
		return auth.Unauthorized(c)
	case errors.As(err, &fe):
		return Fail(c, fe.Code, "http", fe.Message)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		return Fail(c, fiber.StatusInternalServerError, "internal", "internal server error")
	}
}

func message(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}

	return err.Error()
}
