package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	corsAllowMethods = "POST,OPTIONS"
	corsAllowHeaders = "Authorization,Content-Type"
)

// SetCORSHeaders writes the submission route's cross-origin headers for
// responses fiber's cors middleware leaves bare: requests without an Origin
// get "*", and a bare OPTIONS gets the full preflight set.
func SetCORSHeaders(c *fiber.Ctx) {
	origin := c.Get(fiber.HeaderOrigin)
	if origin == "" {
		origin = "*"
	}
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
	if origin != "*" {
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	}
	c.Vary(fiber.HeaderOrigin)
}

// CORS reflects any caller origin with credentials allowed. Real preflights
// are answered by the cors middleware with 204.
func CORS() fiber.Handler {
	reflect := cors.New(cors.Config{
		AllowOriginsFunc: func(string) bool { return true },
		AllowMethods:     corsAllowMethods,
		AllowHeaders:     corsAllowHeaders,
		AllowCredentials: true,
	})
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderOrigin) == "" ||
			(c.Method() == fiber.MethodOptions && c.Get(fiber.HeaderAccessControlRequestMethod) == "") {
			SetCORSHeaders(c)
			return c.Next()
		}
		return reflect(c)
	}
}
