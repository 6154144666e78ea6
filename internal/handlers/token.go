package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/pricing"
	"github.com/oureum/oureum-backend/internal/services/tokenop"
	"github.com/oureum/oureum-backend/internal/utils/pagination"
	"github.com/oureum/oureum-backend/internal/utils/response"
	"github.com/shopspring/decimal"
)

type TokenHandler struct {
	tokenService tokenop.Service
}

func NewTokenHandler(tokenService tokenop.Service) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

type tokenOpInput struct {
	Grams *decimal.Decimal `json:"grams"`
	Fiat  *decimal.Decimal `json:"fiat"`
	Note  string           `json:"note"`
}

// Buy converts fiat into gold and mints the matching tokens.
func (h *TokenHandler) Buy(c *fiber.Ctx) error {
	return h.execute(c, h.tokenService.Buy)
}

// Sell converts gold back into fiat and burns the matching tokens.
func (h *TokenHandler) Sell(c *fiber.Ctx) error {
	return h.execute(c, h.tokenService.Sell)
}

func (h *TokenHandler) execute(c *fiber.Ctx, op func(ctx context.Context, req tokenop.Request) (*tokenop.Result, error)) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input tokenOpInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	result, err := op(c.Context(), tokenop.Request{
		Wallet: claims.Wallet,
		Grams:  input.Grams,
		Fiat:   input.Fiat,
		Note:   input.Note,
	})
	if err != nil {
		return mapTokenError(c, err)
	}

	return response.Success(c, "operation executed", fiber.Map{
		"operation":    result.Operation,
		"new_fiat":     result.NewFiat,
		"new_gold":     result.NewGold,
		"chain_tx_ref": result.ChainTxRef,
		"chain_error":  result.ChainError,
	})
}

// ListOperations returns the authenticated wallet's operation log.
func (h *TokenHandler) ListOperations(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	p := pagination.ParseFromRequest(c)
	ops, total, err := h.tokenService.List(c.Context(), claims.Wallet, p.Limit, p.Offset)
	if err != nil {
		return mapTokenError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, ops))
}

// RecordOffchainPurchase books a purchase settled off-platform. Admin only.
func (h *TokenHandler) RecordOffchainPurchase(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Wallet     string          `json:"wallet"`
		Grams      decimal.Decimal `json:"grams"`
		FiatAmount decimal.Decimal `json:"fiat_amount"`
		Reference  string          `json:"reference"`
		Note       string          `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	result, err := h.tokenService.RecordOffchain(c.Context(), claims.Wallet, tokenop.OffchainPurchase{
		Wallet:     input.Wallet,
		Grams:      input.Grams,
		FiatAmount: input.FiatAmount,
		Reference:  input.Reference,
		Note:       input.Note,
	})
	if err != nil {
		return mapTokenError(c, err)
	}
	return response.Success(c, "offchain purchase recorded", result.Operation)
}

func mapTokenError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, tokenop.ErrAmbiguousAmount),
		errors.Is(err, tokenop.ErrInvalidAmount),
		errors.Is(err, balance.ErrInvalidWallet):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, tokenop.ErrInsufficientBalance):
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, balance.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, pricing.ErrPriceUnavailable):
		return response.Error(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return response.ServerError(c, "internal error")
	}
}
