package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"tokoadmin/internal/apperrors"
)

// Error codes returned in the "code" field.
const (
	CodeValidation     = "validation_failed"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeIllegalState   = "illegal_state_transition"
	CodeInvalidRequest = "invalid_request"
	CodeInternal       = "internal_error"
)

// respondError maps a core error onto an HTTP response.
func respondError(c *fiber.Ctx, err error, message string) error {
	var (
		verr     *apperrors.ValidationError
		notFound *apperrors.NotFoundError
		conflict *apperrors.ConflictError
		illegal  *apperrors.IllegalStateTransitionError
	)

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"code":    CodeValidation,
			"errors":  verr.Fields,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFound.Error(),
			"code":    CodeNotFound,
		})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"code":    CodeConflict,
			"error":   conflict.Error(),
			"field":   conflict.Field,
		})
	case errors.As(err, &illegal):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"code":    CodeIllegalState,
			"error":   illegal.Error(),
		})
	}

	log.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg(message)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"code":    CodeInternal,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"code":    CodeInvalidRequest,
		"error":   err.Error(),
	})
}
