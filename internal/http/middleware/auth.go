package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/identity"
)

// UserIDLocalKey is the locals key holding the authenticated user id.
const UserIDLocalKey = "user_id"

// RequireAuth verifies the bearer token and stores the user id in locals.
// Failures are returned to the app ErrorHandler unchanged.
func RequireAuth(v identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := v.Verify(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(UserIDLocalKey, uid)
		return c.Next()
	}
}

// UserID returns the id stored by RequireAuth, or "".
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}
