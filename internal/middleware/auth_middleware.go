package middleware

import (
	"strings"

	"carproban-backend/internal/access"
	"carproban-backend/internal/repository"
	"carproban-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const capabilitiesKey = "capabilities"

// RequireAuth validates the bearer token, re-checks the session against the
// DB and resolves the user's capability set into the request context. Every
// downstream authorization decision reads this set instead of re-deriving
// the role.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// The token's role and outlet binding are hints only; the DB row is
		// authoritative. Client-supplied outlet context is untrusted input.
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "Account is inactive"})
		}

		caps := access.Resolve(user.ID, user.Role, user.OutletID)
		c.Locals(capabilitiesKey, caps)
		c.Locals("user_id", user.ID.String())
		c.Locals("user_name", user.FullName)

		return c.Next()
	}
}

// Capabilities extracts the resolved capability set. Zero value when the
// route skipped RequireAuth, which grants nothing.
func Capabilities(c *fiber.Ctx) access.Capabilities {
	caps, _ := c.Locals(capabilitiesKey).(access.Capabilities)
	return caps
}
