package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/utils/response"
)

type BalanceHandler struct {
	balanceService balance.Service
}

func NewBalanceHandler(balanceService balance.Service) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetBalances returns both balances for the authenticated wallet,
// creating the user lazily on first contact.
func (h *BalanceHandler) GetBalances(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	user, err := h.balanceService.EnsureUser(c.Context(), claims.Wallet)
	if err != nil {
		return mapBalanceError(c, err)
	}

	fiat, gold, err := h.balanceService.GetBalances(c.Context(), user.ID)
	if err != nil {
		return mapBalanceError(c, err)
	}

	return response.Success(c, "balances", fiber.Map{
		"wallet": user.Wallet,
		"fiat":   fiat,
		"gold":   gold,
	})
}

func mapBalanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, balance.ErrInvalidWallet), errors.Is(err, balance.ErrInvalidAmount):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, balance.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, balance.ErrInsufficientBalance):
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return response.ServerError(c, "internal error")
	}
}
