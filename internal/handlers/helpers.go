// Package handlers contains the thin fiber layer over the services.
// All business rules live below; handlers parse, delegate and map
// errors to status codes.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/models"
)

// extractUserClaims pulls the verified claims the auth middleware
// stored on the request.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
