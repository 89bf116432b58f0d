package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sarisari/internal/domain"
	applog "sarisari/internal/log"
	"sarisari/internal/services"
)

// Allowed is the routing guard predicate: no session denies, role mismatch
// denies, managers pass every gate.
func Allowed(u *domain.User, role string) bool {
	if u == nil {
		return false
	}
	if u.Role == role {
		return true
	}
	return u.Role == domain.RoleManager
}

// RequireRole gates a screen on the session's role.
func RequireRole(auth *services.AuthService, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		if !Allowed(u, role) {
			applog.Security(c, "access.denied", map[string]any{"sid": sid, "need": role, "role": u.Role})
			return c.Status(fiber.StatusForbidden).SendString("Access denied")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
