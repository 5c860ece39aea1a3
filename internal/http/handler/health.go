package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/database"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health is the static liveness endpoint used by external monitoring. It has no dependencies.
//
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		return c.JSON(healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
}

// ReadinessCheck reports whether the database is reachable.
func ReadinessCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}
