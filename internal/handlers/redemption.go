package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/redemption"
	"github.com/oureum/oureum-backend/internal/utils/pagination"
	"github.com/oureum/oureum-backend/internal/utils/response"
	"github.com/shopspring/decimal"
)

type RedemptionHandler struct {
	redemptionService redemption.Service
}

func NewRedemptionHandler(redemptionService redemption.Service) *RedemptionHandler {
	return &RedemptionHandler{redemptionService: redemptionService}
}

// Create opens a redemption request for the authenticated wallet.
func (h *RedemptionHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Grams decimal.Decimal `json:"grams"`
		Kind  string          `json:"kind"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	req, err := h.redemptionService.Create(c.Context(), claims.Wallet, input.Grams, input.Kind)
	if err != nil {
		return mapRedemptionError(c, err)
	}
	return response.Success(c, "redemption request created", req)
}

// List returns redemption requests newest-first. Admin only.
func (h *RedemptionHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	reqs, total, err := h.redemptionService.List(c.Context(), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return mapRedemptionError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, reqs))
}

// Transition moves a request to a new status. Admin only.
func (h *RedemptionHandler) Transition(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid request id")
	}

	var input struct {
		Status string      `json:"status"`
		Note   string      `json:"note"`
		Detail models.JSON `json:"detail"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	req, err := h.redemptionService.Transition(c.Context(), claims.Wallet, uint(id), input.Status, input.Note, input.Detail)
	if err != nil {
		return mapRedemptionError(c, err)
	}
	return response.Success(c, "redemption request updated", req)
}

func mapRedemptionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, redemption.ErrInvalidAmount),
		errors.Is(err, redemption.ErrInvalidKind),
		errors.Is(err, redemption.ErrInvalidStatus),
		errors.Is(err, balance.ErrInvalidWallet):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, redemption.ErrRequestNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, redemption.ErrIllegalTransition),
		errors.Is(err, redemption.ErrRequestFinalized):
		return response.Conflict(c, err.Error())
	default:
		return response.ServerError(c, "internal error")
	}
}
