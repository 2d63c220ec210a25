package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

const callerKey = "auth_caller"

// RequireServiceToken enforces a valid bearer service token on operator routes.
func RequireServiceToken(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		claims, err := tokens.ParseToken(parts[1])
		if err != nil {
			return apperrors.NewUnauthorized("invalid token")
		}

		c.Locals(callerKey, claims.Service)
		return c.Next()
	}
}

// CallerFromContext retrieves the authenticated service name.
func CallerFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(callerKey)
	if val == nil {
		return "", false
	}
	caller, ok := val.(string)
	return caller, ok
}
