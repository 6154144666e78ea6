package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/purchase"
	"github.com/oureum/oureum-backend/internal/utils/response"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	purchaseService purchase.Service
}

func NewPurchaseHandler(purchaseService purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// TopUp charges a payment method and credits the caller's fiat balance.
func (h *PurchaseHandler) TopUp(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount          decimal.Decimal `json:"amount"`
		PaymentMethodID string          `json:"payment_method_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	newBalance, ref, err := h.purchaseService.TopUp(c.Context(), claims.Wallet, input.Amount, input.PaymentMethodID)
	if err != nil {
		return mapPurchaseError(c, err)
	}
	return response.Success(c, "top up successful", fiber.Map{
		"new_balance": newBalance,
		"charge_ref":  ref,
	})
}

// AdminCredit credits fiat to any wallet. Admin only.
func (h *PurchaseHandler) AdminCredit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Wallet string          `json:"wallet"`
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	newBalance, err := h.purchaseService.AdminCredit(c.Context(), claims.Wallet, input.Wallet, input.Amount, input.Note)
	if err != nil {
		return mapPurchaseError(c, err)
	}
	return response.Success(c, "credit applied", fiber.Map{
		"wallet":      input.Wallet,
		"new_balance": newBalance,
	})
}

func mapPurchaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, purchase.ErrInvalidAmount),
		errors.Is(err, balance.ErrInvalidWallet):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, purchase.ErrPaymentFailed):
		return response.Error(c, fiber.StatusBadGateway, err.Error())
	default:
		return response.ServerError(c, "internal error")
	}
}
