package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/conduit-app/article-service/internal/auth"
	"github.com/conduit-app/article-service/internal/handlers"
)

func tokenFromHeader(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "token" && scheme != "bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(mgr *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromHeader(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"errors": []string{"missing authorization token"},
			})
		}
		userID, err := mgr.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"errors": []string{"invalid or expired token"},
			})
		}
		c.Locals(handlers.LocalUserID, userID)
		return c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid token is present
// and lets the request through anonymously otherwise.
func OptionalAuth(mgr *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFromHeader(c); token != "" {
			if userID, err := mgr.Verify(token); err == nil {
				c.Locals(handlers.LocalUserID, userID)
			}
		}
		return c.Next()
	}
}
