package middleware

import (
	"log/slog"
	"strings"

	"petitshop/internal/models"
	"petitshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// TokenValidator turns a bearer token into an identity.
type TokenValidator interface {
	Validate(token string) (*services.Identity, error)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(tokens TokenValidator, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header must be 'Bearer <token>'",
			})
		}

		id, err := tokens.Validate(token)
		if err != nil {
			log.DebugContext(c.UserContext(), "jwt validation failed", slog.Any("error", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and ignores it otherwise.
func OptionalAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if id, err := tokens.Validate(token); err == nil {
				c.Locals(identityKey, id)
			}
		}
		return c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		if id == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		if id.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This action requires the " + role.String() + " role",
			})
		}
		return c.Next()
	}
}

// IdentityFrom returns the caller's identity, or nil for anonymous requests.
func IdentityFrom(c *fiber.Ctx) *services.Identity {
	id, _ := c.Locals(identityKey).(*services.Identity)
	return id
}
