package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shelfmark/internal/domain"
	applog "shelfmark/internal/log"
)

// statusFor is the fixed error-kind to status mapping. Same kind, same
// classification, every time.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindInvalidArgument:
		return fiber.StatusBadRequest
	case domain.KindInvalidState:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// fail translates an engine error into a JSON response. Non-engine errors are
// logged and hidden behind a generic 500.
func fail(c *fiber.Ctx, action string, err error) error {
	if kind, ok := domain.KindOf(err); ok {
		return c.Status(statusFor(kind)).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
