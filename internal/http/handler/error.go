package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/http/middleware"
)

// errorPayload is the body of every failed response. Error is safe to show
// to end users; Code is the machine-readable kind.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromCtx(c),
	})
}

// writeAppError maps a classified error onto its status and payload.
// Unclassified errors become a generic 500.
func writeAppError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	return writeError(c, middleware.StatusFor(kind), kind.String(), apperr.MessageOf(err))
}

// ErrorHandler returns the Fiber global error handler. It covers routing and
// body-limit errors raised by Fiber itself and any classified error a
// middleware returns.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if c.Path() == SubmitPath {
			middleware.SetCORSHeaders(c)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fiber.StatusBadRequest, apperr.PayloadTooLarge.String(), "request body too large")
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, apperr.MalformedRequest.String(), "bad request")
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, apperr.NotFound.String(), "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, apperr.MethodNotAllowed.String(), "method not allowed")
			default:
				log.Error("unhandled_fiber_error", "request_id", requestIDFromCtx(c), "status", fe.Code, "error", fe.Message)
				return writeError(c, fiber.StatusInternalServerError, apperr.Internal.String(), "internal server error")
			}
		}

		if apperr.KindOf(err) == apperr.Internal {
			log.Error("unhandled_error", "request_id", requestIDFromCtx(c), "path", c.Path(), "error", err.Error())
		}
		return writeAppError(c, err)
	}
}
