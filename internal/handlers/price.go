package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/services/pricing"
	"github.com/oureum/oureum-backend/internal/utils/pagination"
	"github.com/oureum/oureum-backend/internal/utils/response"
)

type PriceHandler struct {
	priceService pricing.Service
}

func NewPriceHandler(priceService pricing.Service) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// GetQuote returns the current buy/sell quote. Public.
func (h *PriceHandler) GetQuote(c *fiber.Ctx) error {
	quote, err := h.priceService.Quote(c.Context())
	if err != nil {
		if errors.Is(err, pricing.ErrPriceUnavailable) {
			return response.Error(c, fiber.StatusServiceUnavailable, err.Error())
		}
		return response.ServerError(c, "internal error")
	}
	return response.Success(c, "quote", quote)
}

// SetManualPrice records an operator price override. Admin only.
func (h *PriceHandler) SetManualPrice(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input pricing.ManualPriceRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	snap, err := h.priceService.SetManual(c.Context(), claims.Wallet, input)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidPrice) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "internal error")
	}
	return response.Success(c, "manual price set", snap)
}

// GetHistory lists price snapshots newest-first. Admin only.
func (h *PriceHandler) GetHistory(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	snaps, total, err := h.priceService.History(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return response.ServerError(c, "internal error")
	}
	p.Total = total
	return c.JSON(pagination.Response(p, snaps))
}
