package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger logs each HTTP request as one JSON line with request_id, method,
// path, status and latency in milliseconds. user_id is added once known.
func Logger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := responseStatus(c, err)

		attrs := []any{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}
		if uid, ok := c.Locals(UserIDLocalKey).(string); ok && uid != "" {
			attrs = append(attrs, "user_id", uid)
		}
		log.Info("http_request", attrs...)

		return err
	}
}
