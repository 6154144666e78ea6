// Package middleware provides HTTP middleware for the fiber surface.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/services/auth"
	"github.com/oureum/oureum-backend/internal/utils/response"
)

// AuthMiddleware validates bearer tokens and puts the verified claims
// into the request locals under "claims".
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Handler rejects requests without a valid bearer token.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c)
	}

	claims, err := m.authService.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return response.Unauthorized(c)
	}

	c.Locals("claims", claims)
	return c.Next()
}

// RequireAdmin rejects authenticated requests without the admin role.
func (m *AuthMiddleware) RequireAdmin(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return response.Unauthorized(c)
	}
	if !claims.IsAdmin() {
		return response.Forbidden(c)
	}
	return c.Next()
}
