package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/services/auth"
	"github.com/oureum/oureum-backend/internal/utils/response"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges operator credentials for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Wallet   string `json:"wallet"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	token, err := h.authService.Login(c.Context(), input.Wallet, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Error(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return response.ServerError(c, "internal error")
	}
	return response.Success(c, "login successful", fiber.Map{"token": token})
}
