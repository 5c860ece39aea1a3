package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k apperr.Kind) int {
	switch k {
	case apperr.Unauthenticated:
		return fiber.StatusUnauthorized
	case apperr.PermissionDenied:
		return fiber.StatusForbidden
	case apperr.RateLimited:
		return fiber.StatusTooManyRequests
	case apperr.InvalidSubmission, apperr.PayloadTooLarge, apperr.MalformedRequest, apperr.InvalidArgument:
		return fiber.StatusBadRequest
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.MethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusInternalServerError
	}
}

// responseStatus is the status the ErrorHandler will write for err, or the
// status already set when the chain returned nil.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return StatusFor(apperr.KindOf(err))
}
